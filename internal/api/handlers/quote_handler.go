package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/quote"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Quote Handler
// ============================================

type QuoteHandler struct {
	quoteService service.QuoteService
}

func (h *QuoteHandler) Preview(c *gin.Context) {
	var q quote.Quote
	if !bindJSON(c, &q) {
		return
	}

	p, err := h.quoteService.Preview(c.Request.Context(), q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.QuotePreviewResponse{
		Subtotal:     p.Subtotal.StringFixed(2),
		Tax:          p.Tax.StringFixed(2),
		Total:        p.Total.StringFixed(2),
		TaxRate:      quote.TaxRate.String(),
		ValidityDays: p.ValidityDays,
		IssuedAt:     p.IssuedAt,
		DueDate:      p.DueDate,
		FileName:     p.FileName,
	})
}

func (h *QuoteHandler) PDF(c *gin.Context) {
	var q quote.Quote
	if !bindJSON(c, &q) {
		return
	}

	data, fileName, err := h.quoteService.PDF(c.Request.Context(), q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

// SendEmail takes a multipart form with the rendered pdf and the recipient.
func (h *QuoteHandler) SendEmail(c *gin.Context) {
	if !parseMultipart(c, 1) {
		return
	}

	fh, err := c.FormFile("pdf")
	if err != nil {
		handleServiceError(c, &service.ValidationError{Fields: map[string]string{"pdf": "required"}})
		return
	}
	pdf, _, err := readUpload(fh)
	if err != nil {
		uploadFailed(c, err)
		return
	}

	to := c.PostForm("email")
	sent, err := h.quoteService.Send(c.Request.Context(), service.QuoteDelivery{
		To:         to,
		ClientName: c.PostForm("clientName"),
		Subject:    c.PostForm("subject"),
		PDF:        pdf,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Devis envoyé avec succès"
	if !sent {
		message = "Email non configuré, devis non envoyé"
	}
	c.JSON(http.StatusOK, models.QuoteEmailResponse{
		Message: message,
		Email:   to,
		Sent:    sent,
	})
}
