package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planchais/chantiers-backend/internal/ai"
	"github.com/planchais/chantiers-backend/internal/email"
	"github.com/planchais/chantiers-backend/internal/quote"
)

func sampleQuote() quote.Quote {
	return quote.Quote{
		Client:      quote.Client{Name: "Jean Dupont", Email: "jean@example.com"},
		ProjectType: "piscine",
		Items: []quote.Item{
			{Description: "Terrassement", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			{Description: "Évacuation", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}
}

func TestQuoteService_Preview(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Quote.Preview(context.Background(), sampleQuote())
	require.NoError(t, err)
	assert.Equal(t, "250", p.Subtotal.String())
	assert.Equal(t, "50", p.Tax.String())
	assert.Equal(t, "300", p.Total.String())
	assert.Equal(t, 30, p.ValidityDays)
	assert.Equal(t, time.Date(2024, 4, 9, 9, 0, 0, 0, time.UTC), p.DueDate)
	assert.Equal(t, "Devis_Jean Dupont_2024-03-10.pdf", p.FileName)

	bad := sampleQuote()
	bad.Client.Name = ""
	bad.Items[0].Quantity = decimal.NewFromInt(-1)
	_, err = f.svc.Quote.Preview(context.Background(), bad)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client.name")
	assert.Contains(t, verr.Fields, "items[0].quantity")
}

func TestQuoteService_PDF(t *testing.T) {
	f := newFixture(t)

	data, name, err := f.svc.Quote.PDF(context.Background(), sampleQuote())
	require.NoError(t, err)
	assert.Equal(t, "Devis_Jean Dupont_2024-03-10.pdf", name)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}

type fakeMailer struct {
	enabled bool
	err     error
	to      string
	subject string
	data    email.QuoteEmailData
	pdf     []byte
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendQuote(to, subject string, data email.QuoteEmailData, pdf []byte) error {
	m.to, m.subject, m.data, m.pdf = to, subject, data, pdf
	return m.err
}

func TestQuoteService_Send(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	delivery := QuoteDelivery{To: "client@example.com", ClientName: "Jean", Subject: "Votre devis", PDF: []byte("%PDF-1.3")}

	t.Run("delivers when configured", func(t *testing.T) {
		mailer := &fakeMailer{enabled: true}
		svc := NewQuoteService(testConfig(), mailer, now)
		sent, err := svc.Send(ctx, delivery)
		require.NoError(t, err)
		assert.True(t, sent)
		assert.Equal(t, "client@example.com", mailer.to)
		assert.Equal(t, "Devis_Jean_2024-03-10.pdf", mailer.data.FileName)
		assert.Equal(t, "Planchais Construction", mailer.data.CompanyName)
	})

	t.Run("logs only without smtp", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewQuoteService(testConfig(), mailer, now)
		sent, err := svc.Send(ctx, delivery)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, mailer.to)
	})

	t.Run("smtp failure", func(t *testing.T) {
		svc := NewQuoteService(testConfig(), &fakeMailer{enabled: true, err: errors.New("boom")}, now)
		_, err := svc.Send(ctx, delivery)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewQuoteService(testConfig(), nil, now)
		_, err := svc.Send(ctx, QuoteDelivery{To: "nope"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must be a valid email", verr.Fields["email"])
		assert.Equal(t, "required", verr.Fields["pdf"])
	})
}

type fakeVision struct {
	configured bool
	calls      int
	estimate   *ai.Estimate
	err        error
}

func (v *fakeVision) Configured() bool { return v.configured }

func (v *fakeVision) Analyze(ctx context.Context, image []byte, mimeType string, ec ai.EstimateContext) (*ai.Estimate, error) {
	v.calls++
	return v.estimate, v.err
}

func (v *fakeVision) Visualize(ctx context.Context, projectType, style string) (*ai.Visualization, error) {
	v.calls++
	return &ai.Visualization{ImageURL: "https://img/" + projectType + "-" + style}, v.err
}

type mapCache struct {
	data map[string][]byte
}

func (c *mapCache) SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mapCache) GetCache(ctx context.Context, key string, dest interface{}) error {
	b, ok := c.data[key]
	if !ok {
		return fmt.Errorf("miss")
	}
	return json.Unmarshal(b, dest)
}

func TestEstimationService_Analyze(t *testing.T) {
	ctx := context.Background()
	vision := &fakeVision{configured: true, estimate: &ai.Estimate{TempsRealisation: "3 semaines", CoutTotal: 12000}}
	cache := &mapCache{data: map[string][]byte{}}
	svc := newEstimationService(vision, cache)
	photos := []Photo{{Data: []byte("jpeg-bytes"), MimeType: "image/jpeg"}, {Data: []byte("ignored")}}
	ec := ai.EstimateContext{Surface: "40 m2", Metier: "maçonnerie"}

	est, err := svc.Analyze(ctx, photos, ec)
	require.NoError(t, err)
	assert.Equal(t, "3 semaines", est.TempsRealisation)

	est, err = svc.Analyze(ctx, photos, ec)
	require.NoError(t, err)
	assert.Equal(t, ai.Number(12000), est.CoutTotal)
	assert.Equal(t, 1, vision.calls, "second call is served from cache")

	_, err = svc.Analyze(ctx, photos, ai.EstimateContext{Surface: "80 m2"})
	require.NoError(t, err)
	assert.Equal(t, 2, vision.calls)

	_, err = svc.Analyze(ctx, nil, ec)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEstimationService_NotConfigured(t *testing.T) {
	ctx := context.Background()
	svc := NewEstimationService(nil, nil)

	_, err := svc.Analyze(ctx, []Photo{{Data: []byte("x")}}, ai.EstimateContext{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = svc.Visualize(ctx, "piscine", "moderne")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEstimationService_Visualize(t *testing.T) {
	svc := newEstimationService(&fakeVision{configured: true}, nil)

	vis, err := svc.Visualize(context.Background(), " piscine ", "moderne")
	require.NoError(t, err)
	assert.Equal(t, "https://img/piscine-moderne", vis.ImageURL)

	_, err = svc.Visualize(context.Background(), "", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

type digestRecorder struct {
	sent map[string]email.DailyDigestData
}

func (d *digestRecorder) EnqueueDigest(to string, data email.DailyDigestData) {
	d.sent[to] = data
}

func TestDigestService_SendDaily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Garnier")
	today := f.chantier(t, c.ID, "Piscine", "2024-03-05", "10 jours")
	later := f.chantier(t, c.ID, "Jardin", "2024-05-01", "1 jour")
	alice := f.member(t, "Alice", "alice")
	bob := f.member(t, "Bob", "bob")
	carol := f.member(t, "Carol", "carol")
	for _, pair := range [][2]string{{today.ID, alice.ID}, {later.ID, bob.ID}, {today.ID, carol.ID}} {
		_, err := f.svc.Assignment.Assign(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	_, err := f.svc.TeamMember.Update(ctx, carol.ID, TeamMemberFields{Status: str("inactive")})
	require.NoError(t, err)

	rec := &digestRecorder{sent: map[string]email.DailyDigestData{}}
	digest := NewDigestService(testConfig(), f.repos, rec)

	n, err := digest.SendDaily(ctx, time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, ok := rec.sent["alice@example.com"]
	require.True(t, ok)
	assert.Equal(t, "Alice", data.MemberName)
	assert.Equal(t, "10/03/2024", data.Date)
	require.Len(t, data.Chantiers, 1)
	assert.Equal(t, "Piscine", data.Chantiers[0].Name)
	assert.Equal(t, "Garnier", data.Chantiers[0].ClientName)
	assert.Equal(t, "15/03/2024", data.Chantiers[0].End)
}
