package email

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService(&Config{Host: "smtp.example.com", Port: 587, From: "devis@example.com", FromName: "Planchais Construction"})
}

func TestBuildMessageWithAttachment(t *testing.T) {
	s := testService()
	raw, err := s.BuildMessage(&Email{
		To:          []string{"client@example.com"},
		Subject:     "Votre devis",
		HTMLBody:    "<p>Bonjour</p>",
		Attachments: []Attachment{{Filename: "Devis_Martin_2024-03-01.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 fake")}},
	}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", msg.Header.Get("To"))

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Votre devis", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	body, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, body.Header.Get("Content-Type"), "text/html")

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "Devis_Martin_2024-03-01.pdf", att.FileName())
	assert.Equal(t, "base64", att.Header.Get("Content-Transfer-Encoding"))
	data, err := io.ReadAll(att)
	require.NoError(t, err)
	assert.Contains(t, string(data), "JVBERi0xLjMgZmFrZQ==")

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSendWithoutHostOnlyLogs(t *testing.T) {
	s := NewService(&Config{})
	called := false
	s.send = func(string, string, []string, []byte) error { called = true; return nil }

	require.NoError(t, s.Send(&Email{To: []string{"a@example.com"}, Subject: "x"}))
	assert.False(t, called)
	assert.False(t, s.Enabled())
}

func TestSendQuoteUsesTransport(t *testing.T) {
	s := testService()
	var gotTo []string
	var gotMsg []byte
	s.send = func(addr, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		assert.Equal(t, "devis@example.com", from)
		gotTo, gotMsg = to, msg
		return nil
	}

	err := s.SendQuote("client@example.com", "", QuoteEmailData{ClientName: "Martin", FileName: "Devis.pdf", CompanyName: "Planchais Construction"}, []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, []string{"client@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Devis.pdf")
}

func TestRenderDigest(t *testing.T) {
	s := testService()
	out, err := s.Render("daily_digest", DailyDigestData{
		MemberName: "Paul", Date: "01/03/2024", CompanyName: "Planchais",
		Chantiers: []DigestChantier{{Name: "Piscine", ClientName: "Martin", Start: "01/03/2024", End: "15/03/2024"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Bonjour Paul")
	assert.Contains(t, out, "Piscine")

	_, err = s.Render("missing", nil)
	assert.Error(t, err)
}

func TestQueueRetries(t *testing.T) {
	s := testService()
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	s.send = func(string, string, []string, []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("temporary failure")
		}
		close(done)
		return nil
	}

	q := NewEmailQueue(s, 1)
	q.backoff = time.Millisecond
	defer q.Stop()

	q.EnqueueDigest("paul@example.com", DailyDigestData{MemberName: "Paul", Date: "01/03/2024"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("email was not retried")
	}
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestWriteBase64Lines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBase64Lines(&buf, bytes.Repeat([]byte("a"), 100)))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
