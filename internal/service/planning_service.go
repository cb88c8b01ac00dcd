package service

import (
	"context"
	"fmt"
	"time"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/planning"
	"github.com/planchais/chantiers-backend/internal/repository"
)

type PlanningService interface {
	// Month builds the planning grid. A non-empty teamMemberID keeps only
	// the chantiers that member is assigned to.
	Month(ctx context.Context, year int, month time.Month, teamMemberID string, today time.Time) (*planning.Month, error)
}

type planningService struct {
	chantierRepo   repository.ChantierRepository
	assignmentRepo repository.AssignmentRepository
}

func NewPlanningService(chantierRepo repository.ChantierRepository, assignmentRepo repository.AssignmentRepository) PlanningService {
	return &planningService{chantierRepo: chantierRepo, assignmentRepo: assignmentRepo}
}

func (s *planningService) Month(ctx context.Context, year int, month time.Month, teamMemberID string, today time.Time) (*planning.Month, error) {
	v := violations{}
	if month < time.January || month > time.December {
		v["month"] = "must be between 1 and 12"
	}
	if year < 1970 || year > 9999 {
		v["year"] = "must be between 1970 and 9999"
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	chantiers, err := s.chantierRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chantiers: %w", err)
	}

	var keep map[string]bool
	if teamMemberID != "" {
		assignments, err := s.assignmentRepo.FindAll(ctx, teamMemberID)
		if err != nil {
			return nil, fmt.Errorf("failed to list assignments: %w", err)
		}
		keep = make(map[string]bool, len(assignments))
		for _, a := range assignments {
			keep[a.ChantierID] = true
		}
	}

	entries := make([]planning.Entry, 0, len(chantiers))
	for _, c := range chantiers {
		if keep != nil && !keep[c.ID] {
			continue
		}
		entries = append(entries, planning.Entry{
			ID:         c.ID,
			Name:       c.Name,
			ClientName: c.ClientName,
			Status:     c.Status,
			StartDate:  c.StartDate,
			Duration:   c.Duration,
		})
	}

	m := planning.BuildMonth(year, month, today, entries)
	for _, id := range m.Skipped {
		logger.Warn("[Planning] chantier skipped, unparseable start date", "id", id)
	}
	return &m, nil
}
