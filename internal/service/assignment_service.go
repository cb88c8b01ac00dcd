package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/socket"
)

type AssignmentService interface {
	// ListForChantier returns the chantier's assignments with member details.
	ListForChantier(ctx context.Context, chantierID string) ([]*repository.Assignment, error)
	// List returns every assignment in one query, optionally for one member.
	List(ctx context.Context, teamMemberID string) ([]*repository.Assignment, error)
	Assign(ctx context.Context, chantierID, teamMemberID string) (*repository.Assignment, error)
	Unassign(ctx context.Context, chantierID, assignmentID string) error
}

type assignmentService struct {
	repo         repository.AssignmentRepository
	chantierRepo repository.ChantierRepository
	memberRepo   repository.TeamMemberRepository
	publisher    EventPublisher
}

func NewAssignmentService(
	repo repository.AssignmentRepository,
	chantierRepo repository.ChantierRepository,
	memberRepo repository.TeamMemberRepository,
	publisher EventPublisher,
) AssignmentService {
	return &assignmentService{
		repo:         repo,
		chantierRepo: chantierRepo,
		memberRepo:   memberRepo,
		publisher:    publisher,
	}
}

func (s *assignmentService) ListForChantier(ctx context.Context, chantierID string) ([]*repository.Assignment, error) {
	if err := s.requireChantier(ctx, chantierID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.FindByChantierID(ctx, chantierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) List(ctx context.Context, teamMemberID string) ([]*repository.Assignment, error) {
	assignments, err := s.repo.FindAll(ctx, strings.TrimSpace(teamMemberID))
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) Assign(ctx context.Context, chantierID, teamMemberID string) (*repository.Assignment, error) {
	teamMemberID = strings.TrimSpace(teamMemberID)
	if teamMemberID == "" {
		return nil, &ValidationError{Fields: map[string]string{"teamMemberId": "required"}}
	}

	if err := s.requireChantier(ctx, chantierID); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.FindByID(ctx, teamMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	if member == nil {
		return nil, ErrNotFound
	}

	assignment := &repository.Assignment{ChantierID: chantierID, TeamMemberID: teamMemberID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("team member already assigned: %w", ErrConflict)
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	assignment.Member = member

	s.publisher.Publish(socket.EntityAssignment, socket.ActionCreated, assignment.ID, nil)
	s.publisher.NotifyMember(teamMemberID, true, chantierID)
	return assignment, nil
}

func (s *assignmentService) Unassign(ctx context.Context, chantierID, assignmentID string) error {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil || assignment.ChantierID != chantierID {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, assignmentID); err != nil {
		return storageError("failed to delete assignment", err)
	}

	s.publisher.Publish(socket.EntityAssignment, socket.ActionDeleted, assignmentID, nil)
	s.publisher.NotifyMember(assignment.TeamMemberID, false, chantierID)
	return nil
}

func (s *assignmentService) requireChantier(ctx context.Context, id string) error {
	chantier, err := s.chantierRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get chantier: %w", err)
	}
	if chantier == nil {
		return ErrNotFound
	}
	return nil
}
