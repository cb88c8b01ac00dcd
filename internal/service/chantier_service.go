package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/planning"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/socket"
	"github.com/planchais/chantiers-backend/internal/types"
)

// ChantierFields carries the writable chantier fields. Nil means absent.
type ChantierFields struct {
	Name      *string
	ClientID  *string
	StartDate *string
	Duration  *string
	Images    *[]string
	Status    *string
}

type ChantierService interface {
	List(ctx context.Context) ([]*repository.Chantier, error)
	Get(ctx context.Context, id string) (*repository.Chantier, error)
	Create(ctx context.Context, fields ChantierFields) (*repository.Chantier, error)
	Update(ctx context.Context, id string, fields ChantierFields) (*repository.Chantier, error)
	Delete(ctx context.Context, id string) error
	// SyncStatuses moves chantiers along planned, in progress and done
	// according to their dates. It returns the number of rows changed.
	SyncStatuses(ctx context.Context, today time.Time) (int, error)
}

type chantierService struct {
	repo      repository.ChantierRepository
	publisher EventPublisher
}

func NewChantierService(repo repository.ChantierRepository, publisher EventPublisher) ChantierService {
	return &chantierService{repo: repo, publisher: publisher}
}

func (s *chantierService) List(ctx context.Context) ([]*repository.Chantier, error) {
	chantiers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chantiers: %w", err)
	}
	return chantiers, nil
}

func (s *chantierService) Get(ctx context.Context, id string) (*repository.Chantier, error) {
	chantier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get chantier: %w", err)
	}
	if chantier == nil {
		return nil, ErrNotFound
	}
	return chantier, nil
}

func (s *chantierService) Create(ctx context.Context, f ChantierFields) (*repository.Chantier, error) {
	v := violations{}
	v.require("name", deref(f.Name))
	v.require("clientId", deref(f.ClientID))
	v.require("startDate", deref(f.StartDate))
	v.require("duration", deref(f.Duration))
	status := checkChantierStatus(v, f.Status)
	if err := v.err(); err != nil {
		return nil, err
	}

	chantier := &repository.Chantier{
		Name:      deref(trimmed(f.Name)),
		ClientID:  deref(trimmed(f.ClientID)),
		StartDate: deref(trimmed(f.StartDate)),
		Duration:  deref(trimmed(f.Duration)),
		Images:    []string{},
		Status:    types.ChantierPlanned,
	}
	if f.Images != nil {
		chantier.Images = *f.Images
	}
	if status != "" {
		chantier.Status = status
	}

	if err := s.repo.Create(ctx, chantier); err != nil {
		return nil, chantierStorageError("failed to create chantier", err)
	}

	s.publisher.Publish(socket.EntityChantier, socket.ActionCreated, chantier.ID, nil)
	return s.Get(ctx, chantier.ID)
}

func (s *chantierService) Update(ctx context.Context, id string, f ChantierFields) (*repository.Chantier, error) {
	v := violations{}
	for field, value := range map[string]*string{
		"name": f.Name, "clientId": f.ClientID, "startDate": f.StartDate, "duration": f.Duration,
	} {
		if value != nil {
			v.require(field, *value)
		}
	}
	status := checkChantierStatus(v, f.Status)
	if err := v.err(); err != nil {
		return nil, err
	}

	chantier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.Name != nil {
		chantier.Name = deref(trimmed(f.Name))
	}
	if f.ClientID != nil {
		chantier.ClientID = deref(trimmed(f.ClientID))
	}
	if f.StartDate != nil {
		chantier.StartDate = deref(trimmed(f.StartDate))
	}
	if f.Duration != nil {
		chantier.Duration = deref(trimmed(f.Duration))
	}
	if f.Images != nil {
		chantier.Images = *f.Images
	}
	if status != "" {
		chantier.Status = status
	}

	if err := s.repo.Update(ctx, chantier); err != nil {
		return nil, chantierStorageError("failed to update chantier", err)
	}

	s.publisher.Publish(socket.EntityChantier, socket.ActionUpdated, chantier.ID, nil)
	return s.Get(ctx, chantier.ID)
}

func (s *chantierService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError("failed to delete chantier", err)
	}
	s.publisher.Publish(socket.EntityChantier, socket.ActionDeleted, id, nil)
	return nil
}

func (s *chantierService) SyncStatuses(ctx context.Context, today time.Time) (int, error) {
	chantiers, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list chantiers: %w", err)
	}

	day := planning.Day(today)
	changed := 0
	for _, c := range chantiers {
		span, err := planning.NewSpan(c.StartDate, c.Duration)
		if err != nil {
			continue
		}

		next := c.Status
		switch {
		case c.Status != types.ChantierDone && day.After(span.End):
			next = types.ChantierDone
		case c.Status == types.ChantierPlanned && !day.Before(span.Start):
			next = types.ChantierInProgress
		}
		if next == c.Status {
			continue
		}

		if err := s.repo.UpdateStatus(ctx, c.ID, next); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return changed, fmt.Errorf("failed to update status of chantier %s: %w", c.ID, err)
		}
		logger.Info("[Chantier] status synced", "id", c.ID, "from", c.Status, "to", next)
		s.publisher.Publish(socket.EntityChantier, socket.ActionUpdated, c.ID, nil)
		changed++
	}
	return changed, nil
}

// checkChantierStatus normalizes a present status and records a violation
// when it is not one of the known values.
func checkChantierStatus(v violations, status *string) string {
	if status == nil {
		return ""
	}
	normalized := types.NormalizeChantierStatus(*status)
	if !types.IsValidChantierStatus(normalized) {
		v["status"] = "must be one of planned, in progress, done"
		return ""
	}
	return normalized
}

func chantierStorageError(op string, err error) error {
	if errors.Is(err, repository.ErrForeignKey) {
		return &ValidationError{Fields: map[string]string{"clientId": "unknown client"}}
	}
	return storageError(op, err)
}
