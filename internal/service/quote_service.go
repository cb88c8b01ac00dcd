package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/planchais/chantiers-backend/internal/catalog"
	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/email"
	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/quote"
)

// QuoteMailer delivers a rendered quote. *email.Service satisfies it.
type QuoteMailer interface {
	Enabled() bool
	SendQuote(to, subject string, data email.QuoteEmailData, pdf []byte) error
}

// QuotePreview is what the quote form shows before rendering.
type QuotePreview struct {
	quote.Summary
	ValidityDays int
	IssuedAt     time.Time
	DueDate      time.Time
	FileName     string
}

// QuoteDelivery describes a quote email request.
type QuoteDelivery struct {
	To         string
	ClientName string
	Subject    string
	PDF        []byte
}

type QuoteService interface {
	Preview(ctx context.Context, q quote.Quote) (*QuotePreview, error)
	PDF(ctx context.Context, q quote.Quote) ([]byte, string, error)
	// Send emails the PDF. It reports false when no mail server is
	// configured and the message was only logged.
	Send(ctx context.Context, d QuoteDelivery) (bool, error)
}

type quoteService struct {
	cfg      *config.Config
	renderer *quote.Renderer
	mailer   QuoteMailer
	now      func() time.Time
}

func NewQuoteService(cfg *config.Config, mailer QuoteMailer, now func() time.Time) QuoteService {
	renderer := quote.NewRenderer(quote.Issuer{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
	}, catalog.Default())
	if now == nil {
		now = time.Now
	}
	return &quoteService{cfg: cfg, renderer: renderer, mailer: mailer, now: now}
}

func (s *quoteService) Preview(ctx context.Context, q quote.Quote) (*QuotePreview, error) {
	if err := checkQuote(q); err != nil {
		return nil, err
	}
	issued := s.now()
	return &QuotePreview{
		Summary:      quote.Totals(q.Lines()),
		ValidityDays: q.Validity(),
		IssuedAt:     issued,
		DueDate:      q.DueDate(issued),
		FileName:     quote.FileName(q.Client.Name, issued),
	}, nil
}

func (s *quoteService) PDF(ctx context.Context, q quote.Quote) ([]byte, string, error) {
	if err := checkQuote(q); err != nil {
		return nil, "", err
	}
	issued := s.now()
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, q, issued); err != nil {
		return nil, "", fmt.Errorf("failed to render quote: %w", err)
	}
	return buf.Bytes(), quote.FileName(q.Client.Name, issued), nil
}

func (s *quoteService) Send(ctx context.Context, d QuoteDelivery) (bool, error) {
	v := violations{}
	to := strings.TrimSpace(d.To)
	if to == "" {
		v["email"] = "required"
	} else if !isEmail(to) {
		v["email"] = "must be a valid email"
	}
	if len(d.PDF) == 0 {
		v["pdf"] = "required"
	}
	if err := v.err(); err != nil {
		return false, err
	}

	data := email.QuoteEmailData{
		ClientName:  strings.TrimSpace(d.ClientName),
		FileName:    quote.FileName(d.ClientName, s.now()),
		CompanyName: s.cfg.CompanyName,
	}

	if s.mailer == nil || !s.mailer.Enabled() {
		logger.Info("[Email] mail server not configured, quote not sent", "to", to, "file", data.FileName, "size", len(d.PDF))
		return false, nil
	}
	if err := s.mailer.SendQuote(to, d.Subject, data, d.PDF); err != nil {
		return false, fmt.Errorf("failed to send quote: %w", err)
	}
	return true, nil
}

func checkQuote(q quote.Quote) error {
	v := violations{}
	v.require("client.name", q.Client.Name)
	if q.ValidityDays < 0 {
		v["validityDays"] = "must not be negative"
	}
	for i, item := range q.Items {
		if item.Quantity.IsNegative() {
			v[fmt.Sprintf("items[%d].quantity", i)] = "must not be negative"
		}
		if item.UnitPrice.IsNegative() {
			v[fmt.Sprintf("items[%d].unitPrice", i)] = "must not be negative"
		}
	}
	return v.err()
}
