package transport

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/service"
)

type AdminHandler struct {
	registrationService service.RegistrationService
	ticketService       service.TicketService
}

func NewAdminHandler(registrationService service.RegistrationService, ticketService service.TicketService) *AdminHandler {
	return &AdminHandler{
		registrationService: registrationService,
		ticketService:       ticketService,
	}
}

func (h *AdminHandler) GetAllRegistrations(c *gin.Context) {
	registrations, err := h.registrationService.GetAllRegistrations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registrations": registrations,
		"count":         len(registrations),
	})
}

func (h *AdminHandler) GetAllTickets(c *gin.Context) {
	tickets, err := h.ticketService.GetAllTickets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

type updatePaymentRequest struct {
	Status string  `json:"status" binding:"required"`
	Amount float64 `json:"amount"`
}

func parsePaymentStatus(status string) (entity.PaymentStatus, error) {
	switch status {
	case "pending":
		return entity.PaymentStatusPending, nil
	case "confirmed":
		return entity.PaymentStatusConfirmed, nil
	case "failed":
		return entity.PaymentStatusFailed, nil
	default:
		return "", fmt.Errorf("invalid payment status: %s", status)
	}
}

func (h *AdminHandler) UpdateRegistrationPayment(c *gin.Context) {
	id := c.Param("id")

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := parsePaymentStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registrationService.UpdatePaymentStatus(c.Request.Context(), id, status, req.Amount); err != nil {
		if errors.Is(err, entity.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}

func (h *AdminHandler) UpdateTicketPayment(c *gin.Context) {
	id := c.Param("id")

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := parsePaymentStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ticketService.UpdatePaymentStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, entity.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}

var registrationExportHeader = []string{
	"Team Unique ID",
	"Team Name",
	"Sport",
	"Category",
	"Payment Status",
	"Payment Amount",
	"Booking UID",
	"Members",
	"Created At",
}

// ExportRegistrations streams every registration as an xlsx workbook, one
// row per team with members flattened into a single cell.
func (h *AdminHandler) ExportRegistrations(c *gin.Context) {
	registrations, err := h.registrationService.GetAllRegistrations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload, err := buildRegistrationWorkbook(registrations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("registrations_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		payload)
}

func buildRegistrationWorkbook(registrations []*entity.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Registrations"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range registrationExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for rowIdx, reg := range registrations {
		row := rowIdx + 2
		values := []interface{}{
			reg.TeamUniqueID,
			reg.TeamName,
			reg.Sport,
			reg.Category,
			string(reg.PaymentStatus),
			reg.PaymentAmount,
			reg.TiqrBookingUID,
			formatMembers(reg.Members),
			reg.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMembers(members []entity.Member) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		part := m.Name
		if m.Email != "" {
			part += " <" + m.Email + ">"
		}
		if m.Phone != "" {
			part += " " + m.Phone
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
