package quote

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/planchais/chantiers-backend/internal/catalog"
)

// Issuer is the company printed at the top of every quote.
type Issuer struct {
	Name    string
	Address string
}

// Labeler maps a project type key to its display label.
type Labeler interface {
	Label(projectType string) string
}

// Renderer lays out quotes on A4 pages.
type Renderer struct {
	Issuer Issuer
	Labels Labeler
}

func NewRenderer(issuer Issuer, labels Labeler) *Renderer {
	if labels == nil {
		labels = catalog.Default()
	}
	return &Renderer{Issuer: issuer, Labels: labels}
}

// RenderPDF renders q with the embedded catalog labels.
func RenderPDF(w io.Writer, q Quote, issuer Issuer, now time.Time) error {
	return NewRenderer(issuer, nil).Render(w, q, now)
}

const (
	margin     = 20.0
	lineHeight = 6.0
)

func (r *Renderer) Render(w io.Writer, q Quote, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Devis", true)
	pdf.SetCreator(r.Issuer.Name, true)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	right := pageW - margin
	text := func(x, y float64, s string) { pdf.Text(x, y, tr(s)) }
	textRight := func(y float64, s string) {
		s = tr(s)
		pdf.Text(right-pdf.GetStringWidth(s), y, s)
	}

	y := 20.0

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	text(margin, y, "DEVIS")
	y += 10

	pdf.SetFont("Helvetica", "", 10)
	text(margin, y, r.Issuer.Name)
	y += 5
	text(margin, y, r.Issuer.Address)
	y += 10

	validity := q.Validity()
	text(right-50, 20, "Date: "+now.Format("02/01/2006"))
	text(right-50, 25, fmt.Sprintf("Validité: %d jours", validity))
	text(right-50, 30, "Échéance: "+q.DueDate(now).Format("02/01/2006"))

	y += 5
	pdf.SetLineWidth(0.5)
	pdf.Line(margin, y, right, y)
	y += 10

	// Client
	pdf.SetFont("Helvetica", "B", 12)
	text(margin, y, "CLIENT")
	y += 8

	pdf.SetFontSize(10)
	if q.Client.Name != "" {
		pdf.SetFont("Helvetica", "B", 10)
		text(margin, y, q.Client.Name)
		y += lineHeight
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range []string{q.Client.Email, q.Client.Phone, q.Client.Address} {
		if s != "" {
			text(margin, y, s)
			y += lineHeight
		}
	}
	y += 5

	// Project
	if q.ProjectType != "" || q.ProjectDescription != "" {
		pdf.SetFont("Helvetica", "B", 12)
		text(margin, y, "PROJET")
		y += 8

		if q.ProjectType != "" {
			pdf.SetFont("Helvetica", "B", 10)
			text(margin, y, "Type: "+r.Labels.Label(q.ProjectType))
			y += lineHeight
		}
		pdf.SetFont("Helvetica", "", 10)
		if q.ProjectDescription != "" {
			for _, line := range pdf.SplitText(tr(q.ProjectDescription), pageW-2*margin) {
				pdf.Text(margin, y, line)
				y += lineHeight
			}
		}
		y += 5
	}

	// Lines
	lines := q.Lines()
	if len(lines) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		text(margin, y, "DÉTAIL DES PRESTATIONS")
		y += 10

		pdf.SetFont("Helvetica", "B", 9)
		text(margin, y, "Description")
		text(margin+100, y, "Qté")
		text(margin+120, y, "Prix unit.")
		text(margin+160, y, "Total")
		y += 5
		pdf.SetLineWidth(0.3)
		pdf.Line(margin, y, right, y)
		y += 5

		pdf.SetFont("Helvetica", "", 9)
		for i, it := range lines {
			if y > pageH-40 {
				pdf.AddPage()
				y = 20
			}
			desc := it.Description
			if desc == "" {
				desc = "Prestation " + strconv.Itoa(i+1)
			}
			split := pdf.SplitText(tr(desc), 90)
			for j, line := range split {
				pdf.Text(margin, y+float64(j)*5, line)
			}
			text(margin+100, y, it.Quantity.String())
			text(margin+120, y, money(it.UnitPrice))
			text(margin+160, y, money(it.Total()))
			y += max(float64(len(split))*5, 8)
		}
		y += 10
	}

	// Totals
	if y > pageH-50 {
		pdf.AddPage()
		y = 20
	}
	sum := Totals(q.Items)

	pdf.SetLineWidth(0.3)
	pdf.Line(margin, y, right, y)
	y += 10

	pdf.SetFont("Helvetica", "", 10)
	text(right-60, y, "Sous-total HT:")
	textRight(y, money(sum.Subtotal))
	y += 7
	text(right-60, y, "TVA (20%):")
	textRight(y, money(sum.Tax))
	y += 7

	pdf.SetLineWidth(0.5)
	pdf.Line(right-60, y, right, y)
	y += 7

	pdf.SetFont("Helvetica", "B", 12)
	text(right-60, y, "Total TTC:")
	textRight(y, money(sum.Total))

	// Footer
	pdf.SetFont("Helvetica", "", 8)
	footer := tr(fmt.Sprintf("Ce devis est valable %d jours à compter de sa date d'émission.", validity))
	pdf.Text((pageW-pdf.GetStringWidth(footer))/2, pageH-15, footer)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render quote: %w", err)
	}
	return pdf.Output(w)
}
