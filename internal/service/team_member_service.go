package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/socket"
	"github.com/planchais/chantiers-backend/internal/types"
)

// TeamMemberFields carries the writable team member fields. Nil means absent.
type TeamMemberFields struct {
	Name      *string
	Role      *string
	Email     *string
	Phone     *string
	Status    *string
	LoginCode *string
	UserID    *string
}

type TeamMemberService interface {
	List(ctx context.Context) ([]*repository.TeamMember, error)
	Get(ctx context.Context, id string) (*repository.TeamMember, error)
	Create(ctx context.Context, fields TeamMemberFields) (*repository.TeamMember, error)
	Update(ctx context.Context, id string, fields TeamMemberFields) (*repository.TeamMember, error)
	Delete(ctx context.Context, id string) error
}

type teamMemberService struct {
	repo      repository.TeamMemberRepository
	publisher EventPublisher
}

func NewTeamMemberService(repo repository.TeamMemberRepository, publisher EventPublisher) TeamMemberService {
	return &teamMemberService{repo: repo, publisher: publisher}
}

func (s *teamMemberService) List(ctx context.Context) ([]*repository.TeamMember, error) {
	members, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

func (s *teamMemberService) Get(ctx context.Context, id string) (*repository.TeamMember, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member, nil
}

func (s *teamMemberService) Create(ctx context.Context, f TeamMemberFields) (*repository.TeamMember, error) {
	v := violations{}
	v.require("name", deref(f.Name))
	v.require("role", deref(f.Role))
	v.require("email", deref(f.Email))
	v.require("loginCode", deref(f.LoginCode))
	status := checkMember(v, f)
	if err := v.err(); err != nil {
		return nil, err
	}

	member := &repository.TeamMember{
		Name:      deref(trimmed(f.Name)),
		Role:      deref(trimmed(f.Role)),
		Email:     deref(trimmed(f.Email)),
		Phone:     optional(f.Phone),
		Status:    types.MemberActive,
		LoginCode: deref(trimmed(f.LoginCode)),
		UserID:    optional(f.UserID),
	}
	if status != "" {
		member.Status = status
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, memberStorageError("failed to create team member", err)
	}

	s.publisher.Publish(socket.EntityTeamMember, socket.ActionCreated, member.ID, nil)
	return member, nil
}

func (s *teamMemberService) Update(ctx context.Context, id string, f TeamMemberFields) (*repository.TeamMember, error) {
	v := violations{}
	for field, value := range map[string]*string{
		"name": f.Name, "role": f.Role, "email": f.Email, "loginCode": f.LoginCode,
	} {
		if value != nil {
			v.require(field, *value)
		}
	}
	status := checkMember(v, f)
	if err := v.err(); err != nil {
		return nil, err
	}

	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.Name != nil {
		member.Name = deref(trimmed(f.Name))
	}
	if f.Role != nil {
		member.Role = deref(trimmed(f.Role))
	}
	if f.Email != nil {
		member.Email = deref(trimmed(f.Email))
	}
	if f.Phone != nil {
		member.Phone = optional(f.Phone)
	}
	if status != "" {
		member.Status = status
	}
	if f.LoginCode != nil {
		member.LoginCode = deref(trimmed(f.LoginCode))
	}
	if f.UserID != nil {
		member.UserID = optional(f.UserID)
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, memberStorageError("failed to update team member", err)
	}

	s.publisher.Publish(socket.EntityTeamMember, socket.ActionUpdated, member.ID, nil)
	return member, nil
}

func (s *teamMemberService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError("failed to delete team member", err)
	}
	s.publisher.Publish(socket.EntityTeamMember, socket.ActionDeleted, id, nil)
	return nil
}

func checkMember(v violations, f TeamMemberFields) string {
	if f.Email != nil && deref(trimmed(f.Email)) != "" && !isEmail(deref(trimmed(f.Email))) {
		v["email"] = "must be a valid email"
	}
	if f.Status == nil {
		return ""
	}
	normalized := types.NormalizeMemberStatus(*f.Status)
	if !types.IsValidMemberStatus(normalized) {
		v["status"] = "must be one of active, inactive"
		return ""
	}
	return normalized
}

func memberStorageError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("login code already in use: %w", ErrConflict)
	case errors.Is(err, repository.ErrForeignKey):
		return &ValidationError{Fields: map[string]string{"userId": "unknown user"}}
	}
	return storageError(op, err)
}
