// Package mailer sends transactional email through the Brevo HTTP API.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prakida/festival-backend/config"
	"github.com/prakida/festival-backend/internal/entity"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type Mailer struct {
	http       *resty.Client
	apiKey     string
	senderName string
	senderFrom string
}

// New returns nil when email is disabled; callers treat a nil mailer as
// notifications-off.
func New(cfg *config.EmailConfig) *Mailer {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("accept", "application/json").
		SetHeader("content-type", "application/json").
		SetHeader("api-key", cfg.APIKey)

	return &Mailer{
		http:       client,
		apiKey:     cfg.APIKey,
		senderName: cfg.SenderName,
		senderFrom: cfg.SenderFrom,
	}
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// SendRegistrationConfirmed emails one team member that their registration
// payment went through.
func (m *Mailer) SendRegistrationConfirmed(ctx context.Context, member entity.Member, reg *entity.Registration) error {
	subject := fmt.Sprintf("Registration Confirmed: %s", reg.TeamName)
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; color: #333; padding: 20px;">
			<h1 style="color: #FF4500;">REGISTRATION CONFIRMED</h1>
			<p>Greetings <strong>%s</strong>,</p>
			<p>Your team's registration payment has been confirmed.</p>
			<div style="background: #f4f4f4; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<p><strong>Team ID:</strong> %s</p>
				<p><strong>Team Name:</strong> %s</p>
				<p><strong>Sport:</strong> %s</p>
				<p><strong>Category:</strong> %s</p>
			</div>
			<p>See you at the event.</p>
		</div>`,
		member.Name, reg.TeamUniqueID, reg.TeamName, reg.Sport, reg.Category,
	)

	req := sendRequest{
		Sender:      address{Name: m.senderName, Email: m.senderFrom},
		To:          []address{{Name: member.Name, Email: member.Email}},
		Subject:     subject,
		HTMLContent: html,
	}

	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(brevoEndpoint)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("brevo API error: %s", resp.Status())
	}
	return nil
}
