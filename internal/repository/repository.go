// internal/repository/repository.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Errors
// ============================================

var (
	ErrNotFound   = errors.New("row not found")
	ErrDuplicate  = errors.New("unique constraint violated")
	ErrForeignKey = errors.New("foreign key constraint violated")
)

// ============================================
// Models / Entities
// ============================================

type User struct {
	ID        string
	Username  string
	Password  string
	CreatedAt time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Client struct {
	ID        string
	Name      string
	Email     *string
	Phone     string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Chantier struct {
	ID         string
	Name       string
	ClientID   string
	ClientName string // joined, read-only
	StartDate  string
	Duration   string
	Images     []string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TeamMember struct {
	ID        string
	Name      string
	Role      string
	Email     string
	Phone     *string
	Status    string
	LoginCode string
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Assignment struct {
	ID           string
	ChantierID   string
	TeamMemberID string
	CreatedAt    time.Time
	Member       *TeamMember
}

// ============================================
// Repository Interfaces
// ============================================

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Count(ctx context.Context) (int, error)
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	// DeleteRefreshToken returns ErrNotFound when the token was already gone.
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)
	FindAll(ctx context.Context) ([]*Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id string) error
}

type ChantierRepository interface {
	Create(ctx context.Context, chantier *Chantier) error
	FindByID(ctx context.Context, id string) (*Chantier, error)
	FindAll(ctx context.Context) ([]*Chantier, error)
	Update(ctx context.Context, chantier *Chantier) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type TeamMemberRepository interface {
	Create(ctx context.Context, member *TeamMember) error
	FindByID(ctx context.Context, id string) (*TeamMember, error)
	FindByLoginCode(ctx context.Context, code string) (*TeamMember, error)
	FindAll(ctx context.Context) ([]*TeamMember, error)
	Update(ctx context.Context, member *TeamMember) error
	Delete(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *Assignment) error
	FindByID(ctx context.Context, id string) (*Assignment, error)
	// FindByChantierID returns the assignments of one chantier with Member set.
	FindByChantierID(ctx context.Context, chantierID string) ([]*Assignment, error)
	// FindAll returns every assignment with Member set, optionally restricted
	// to one team member when teamMemberID is not empty.
	FindAll(ctx context.Context, teamMemberID string) ([]*Assignment, error)
	Delete(ctx context.Context, id string) error
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo       UserRepository
	ClientRepo     ClientRepository
	ChantierRepo   ChantierRepository
	TeamMemberRepo TeamMemberRepository
	AssignmentRepo AssignmentRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	store := newMemoryStore()
	return &Repositories{
		UserRepo:       &inMemoryUserRepository{store},
		ClientRepo:     &inMemoryClientRepository{store},
		ChantierRepo:   &inMemoryChantierRepository{store},
		TeamMemberRepo: &inMemoryTeamMemberRepository{store},
		AssignmentRepo: &inMemoryAssignmentRepository{store},
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories
func NewPgRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:       NewUserRepository(pool),
		ClientRepo:     NewClientRepository(pool),
		ChantierRepo:   NewChantierRepository(pool),
		TeamMemberRepo: NewTeamMemberRepository(pool),
		AssignmentRepo: NewAssignmentRepository(pool),
	}
}

// ============================================
// Helpers
// ============================================

// translateError turns PostgreSQL constraint errors into package sentinels.
// A malformed UUID (22P02) in a reference column cannot point at any row, so
// it is reported like a foreign key violation.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		case "22P02":
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.Message)
		}
	}
	return err
}

// isMissing reports whether a single-row lookup found nothing. Malformed
// UUIDs (22P02) cannot match any row, so they count as missing.
func isMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func affectedOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		if isMissing(err) {
			return ErrNotFound
		}
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeImages(images []string) string {
	if images == nil {
		images = []string{}
	}
	data, _ := json.Marshal(images)
	return string(data)
}

func decodeImages(raw string) []string {
	images := []string{}
	if raw == "" {
		return images
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return []string{}
	}
	return images
}
