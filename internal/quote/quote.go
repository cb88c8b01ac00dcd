// Package quote computes quote totals and renders quotes as PDF documents.
package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the French standard VAT rate applied to every quote.
var TaxRate = decimal.New(20, -2)

// DefaultValidityDays applies when a quote does not set its own validity.
const DefaultValidityDays = 30

type Item struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Total is quantity times unit price.
func (i Item) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IsBlank reports a line the user added but never filled in.
func (i Item) IsBlank() bool {
	return strings.TrimSpace(i.Description) == "" &&
		!i.Quantity.IsPositive() && !i.UnitPrice.IsPositive()
}

type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Quote struct {
	Client             Client `json:"client"`
	ProjectType        string `json:"projectType"`
	ProjectDescription string `json:"projectDescription"`
	ValidityDays       int    `json:"validityDays"`
	Items              []Item `json:"items"`
}

// Validity returns the validity period in days.
func (q Quote) Validity() int {
	if q.ValidityDays <= 0 {
		return DefaultValidityDays
	}
	return q.ValidityDays
}

// DueDate is the last day the quote can be accepted.
func (q Quote) DueDate(issued time.Time) time.Time {
	return issued.AddDate(0, 0, q.Validity())
}

// Lines returns the items worth printing.
func (q Quote) Lines() []Item {
	out := make([]Item, 0, len(q.Items))
	for _, it := range q.Items {
		if !it.IsBlank() {
			out = append(out, it)
		}
	}
	return out
}

// Summary holds the rounded totals of a quote.
type Summary struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals sums line totals and applies VAT. Every amount is rounded to cents.
func Totals(items []Item) Summary {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total())
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// FileName builds the download name, e.g. Devis_Martin_2024-03-01.pdf.
func FileName(clientName string, issued time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '\\', r == '"', r == ':':
			return '_'
		}
		return r
	}, strings.TrimSpace(clientName))
	if name == "" {
		name = "Client"
	}
	return fmt.Sprintf("Devis_%s_%s.pdf", name, issued.Format("2006-01-02"))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}
