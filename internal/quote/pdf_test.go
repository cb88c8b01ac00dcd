package quote

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPDF(t *testing.T, data []byte) (int, string) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	plain, err := r.GetPlainText()
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, plain)
	require.NoError(t, err)
	return r.NumPage(), buf.String()
}

func TestRenderPDF(t *testing.T) {
	q := Quote{
		Client:             Client{Name: "Martin", Email: "martin@example.com", Phone: "0600000000"},
		ProjectType:        "piscine",
		ProjectDescription: "Piscine enterrée 8x4 avec plage en bois.",
		Items:              []Item{item("Terrassement", 2, 100), item("", 1, 50)},
	}
	var buf bytes.Buffer
	err := RenderPDF(&buf, q, Issuer{Name: "Planchais Construction", Address: "1 rue du Port"}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	pages, text := readPDF(t, buf.Bytes())
	assert.Equal(t, 1, pages)
	assert.Contains(t, text, "DEVIS")
	assert.Contains(t, text, "Martin")
	assert.Contains(t, text, "Prestation")
}

func TestRenderPDFBreaksPages(t *testing.T) {
	items := make([]Item, 0, 60)
	for i := 0; i < 60; i++ {
		items = append(items, Item{
			Description: fmt.Sprintf("Ligne %d", i+1),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(10),
		})
	}
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, Quote{Items: items}, Issuer{Name: "X"}, time.Now()))

	pages, text := readPDF(t, buf.Bytes())
	assert.Greater(t, pages, 1)
	assert.True(t, strings.Contains(text, "Ligne 60"))
}
