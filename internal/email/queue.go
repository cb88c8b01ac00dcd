package email

import (
	"sync"
	"time"

	"github.com/planchais/chantiers-backend/internal/logger"
)

// ============================================
// Async Email Queue (simple in-memory)
// ============================================

const maxRetries = 3

// EmailQueue handles async email sending
type EmailQueue struct {
	service *Service
	queue   chan *queuedEmail
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	backoff time.Duration
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

// NewEmailQueue creates a new email queue
func NewEmailQueue(service *Service, workers int) *EmailQueue {
	if workers <= 0 {
		workers = 1
	}
	q := &EmailQueue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan struct{}),
		backoff: 2 * time.Second,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *EmailQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case email := <-q.queue:
			q.process(email)
		case <-q.done:
			return
		}
	}
}

func (q *EmailQueue) process(email *queuedEmail) {
	err := q.service.SendWithTemplate(email.to, email.subject, email.templateName, email.data)
	if err == nil {
		return
	}
	logger.Error("[Email] send error", "template", email.templateName, "attempt", email.retries+1, "error", err)
	if email.retries >= maxRetries {
		return
	}
	email.retries++
	select {
	case <-time.After(q.backoff * time.Duration(email.retries)):
	case <-q.done:
		return
	}
	select {
	case q.queue <- email:
	default:
		logger.Warn("[Email] queue full, dropping retry", "template", email.templateName)
	}
}

// Enqueue adds an email to the queue
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	select {
	case q.queue <- &queuedEmail{to: to, subject: subject, templateName: templateName, data: data}:
	case <-q.done:
	}
}

// EnqueueDigest queues the daily planning digest for one member.
func (q *EmailQueue) EnqueueDigest(to string, data DailyDigestData) {
	q.Enqueue([]string{to}, "Votre planning du "+data.Date, "daily_digest", data)
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
