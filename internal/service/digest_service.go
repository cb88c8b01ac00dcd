package service

import (
	"context"
	"fmt"
	"time"

	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/email"
	"github.com/planchais/chantiers-backend/internal/planning"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/types"
)

// DigestSender queues digest emails. *email.EmailQueue satisfies it.
type DigestSender interface {
	EnqueueDigest(to string, data email.DailyDigestData)
}

type DigestService interface {
	// SendDaily queues one digest per active member with work on day and
	// returns how many were queued.
	SendDaily(ctx context.Context, day time.Time) (int, error)
}

type digestService struct {
	cfg            *config.Config
	memberRepo     repository.TeamMemberRepository
	chantierRepo   repository.ChantierRepository
	assignmentRepo repository.AssignmentRepository
	sender         DigestSender
}

func NewDigestService(cfg *config.Config, repos *repository.Repositories, sender DigestSender) DigestService {
	return &digestService{
		cfg:            cfg,
		memberRepo:     repos.TeamMemberRepo,
		chantierRepo:   repos.ChantierRepo,
		assignmentRepo: repos.AssignmentRepo,
		sender:         sender,
	}
}

func (s *digestService) SendDaily(ctx context.Context, day time.Time) (int, error) {
	if s.sender == nil {
		return 0, nil
	}

	chantiers, err := s.chantierRepo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list chantiers: %w", err)
	}
	active := make(map[string]email.DigestChantier)
	for _, c := range chantiers {
		span, err := planning.NewSpan(c.StartDate, c.Duration)
		if err != nil || !span.ActiveOn(day) {
			continue
		}
		active[c.ID] = email.DigestChantier{
			Name:       c.Name,
			ClientName: c.ClientName,
			Start:      span.Start.Format("02/01/2006"),
			End:        span.End.Format("02/01/2006"),
		}
	}
	if len(active) == 0 {
		return 0, nil
	}

	assignments, err := s.assignmentRepo.FindAll(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	byMember := make(map[string][]email.DigestChantier)
	for _, a := range assignments {
		if c, ok := active[a.ChantierID]; ok {
			byMember[a.TeamMemberID] = append(byMember[a.TeamMemberID], c)
		}
	}

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list team members: %w", err)
	}

	queued := 0
	for _, m := range members {
		work := byMember[m.ID]
		if m.Status != types.MemberActive || m.Email == "" || len(work) == 0 {
			continue
		}
		s.sender.EnqueueDigest(m.Email, email.DailyDigestData{
			MemberName:  m.Name,
			Date:        planning.Day(day).Format("02/01/2006"),
			CompanyName: s.cfg.CompanyName,
			Chantiers:   work,
		})
		queued++
	}
	return queued, nil
}
