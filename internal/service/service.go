package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/planchais/chantiers-backend/internal/ai"
	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnavailable        = errors.New("service unavailable")
	ErrTooManyAttempts    = errors.New("too many attempts")

	// ErrRegistrationClosed is an ErrForbidden for anonymous sign-ups once
	// the first account exists.
	ErrRegistrationClosed = fmt.Errorf("registration is closed: %w", ErrForbidden)
)

// ValidationError lists offending fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "Invalid data: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type violations map[string]string

func (v violations) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

var validate = validator.New()

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// EventPublisher receives data change notifications.
type EventPublisher interface {
	Publish(entity, action, id string, data interface{})
	NotifyMember(teamMemberID string, assigned bool, chantierID string)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, string, string, interface{}) {}
func (NopPublisher) NotifyMember(string, bool, string)           {}

// Cache stores JSON values with an expiry. *db.RedisDB satisfies it.
type Cache interface {
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetCache(ctx context.Context, key string, dest interface{}) error
}

// Limiter counts hits in a fixed window. *db.RedisDB satisfies it.
type Limiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth       AuthService
	Client     ClientService
	Chantier   ChantierService
	TeamMember TeamMemberService
	Assignment AssignmentService
	Planning   PlanningService
	Estimation EstimationService
	Quote      QuoteService
	Digest     DigestService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Publisher EventPublisher
	AI        *ai.Client
	Cache     Cache
	Limiter   Limiter
	Mailer    QuoteMailer
	Digests   DigestSender
	Now       func() time.Time
}

func NewServices(deps *ServiceDeps) *Services {
	if deps.Publisher == nil {
		deps.Publisher = NopPublisher{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	repos := deps.Repos

	return &Services{
		Auth:       NewAuthService(deps.Config, repos.UserRepo, repos.TeamMemberRepo, deps.Limiter),
		Client:     NewClientService(repos.ClientRepo, deps.Publisher),
		Chantier:   NewChantierService(repos.ChantierRepo, deps.Publisher),
		TeamMember: NewTeamMemberService(repos.TeamMemberRepo, deps.Publisher),
		Assignment: NewAssignmentService(repos.AssignmentRepo, repos.ChantierRepo, repos.TeamMemberRepo, deps.Publisher),
		Planning:   NewPlanningService(repos.ChantierRepo, repos.AssignmentRepo),
		Estimation: NewEstimationService(deps.AI, deps.Cache),
		Quote:      NewQuoteService(deps.Config, deps.Mailer, deps.Now),
		Digest:     NewDigestService(deps.Config, repos, deps.Digests),
	}
}

// storageError maps repository sentinels onto service errors.
func storageError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// optional turns an empty string into nil.
func optional(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
