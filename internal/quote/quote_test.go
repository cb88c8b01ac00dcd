package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(desc string, qty, price float64) Item {
	return Item{Description: desc, Quantity: decimal.NewFromFloat(qty), UnitPrice: decimal.NewFromFloat(price)}
}

func TestTotals(t *testing.T) {
	sum := Totals([]Item{item("Terrassement", 2, 100), item("Gravier", 1, 50)})
	assert.Equal(t, "250.00", sum.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", sum.Tax.StringFixed(2))
	assert.Equal(t, "300.00", sum.Total.StringFixed(2))
}

func TestTotalsRoundsToCents(t *testing.T) {
	sum := Totals([]Item{item("Vis", 3, 0.333)})
	assert.Equal(t, "1.00", sum.Subtotal.StringFixed(2))
	assert.Equal(t, "0.20", sum.Tax.StringFixed(2))
	assert.Equal(t, "1.20", sum.Total.StringFixed(2))
}

func TestTotalsEmpty(t *testing.T) {
	sum := Totals(nil)
	assert.True(t, sum.Total.IsZero())
}

func TestLinesSkipBlankItems(t *testing.T) {
	q := Quote{Items: []Item{item("", 0, 0), item("", 1, 0), item("Pose", 0, 0)}}
	assert.Len(t, q.Lines(), 2)
}

func TestValidity(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, Quote{}.Validity())
	assert.Equal(t, time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC), Quote{}.DueDate(issued))
	assert.Equal(t, 15, Quote{ValidityDays: 15}.Validity())
}

func TestFileName(t *testing.T) {
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Devis_Martin_2024-03-01.pdf", FileName("Martin", issued))
	assert.Equal(t, "Devis_Client_2024-03-01.pdf", FileName("  ", issued))
	assert.Equal(t, "Devis_A_B_2024-03-01.pdf", FileName("A/B", issued))
}
