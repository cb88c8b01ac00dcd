// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/types"
)

const AdminUsername = "admin"

// SeedData creates development data. It does nothing when the admin user
// already exists.
func SeedData(ctx context.Context, repos *repository.Repositories, adminPassword string) error {
	existing, err := repos.UserRepo.FindByUsername(ctx, AdminUsername)
	if err != nil {
		return fmt.Errorf("seed: look up admin: %w", err)
	}
	if existing != nil {
		logger.Info("[Seed] Data already exists, skipping...")
		return nil
	}

	logger.Info("[Seed] 🌱 Creating development data...")

	// ============================================
	// ADMIN USER
	// ============================================
	password, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}
	if err := repos.UserRepo.Create(ctx, &repository.User{Username: AdminUsername, Password: string(password)}); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}

	// ============================================
	// CLIENTS
	// ============================================
	dupont := &repository.Client{
		Name:    "Famille Dupont",
		Email:   stringPtr("dupont@example.com"),
		Phone:   "06 12 34 56 78",
		Address: stringPtr("12 rue des Lilas, 44000 Nantes"),
	}
	mairie := &repository.Client{
		Name:  "Mairie de Rezé",
		Phone: "02 40 00 00 00",
	}
	for _, c := range []*repository.Client{dupont, mairie} {
		if err := repos.ClientRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("seed: create client %s: %w", c.Name, err)
		}
	}
	logger.Info("✅ [Seed] Created clients", "count", 2)

	// ============================================
	// CHANTIERS (dated around today so the planning is not empty)
	// ============================================
	today := time.Now()
	piscine := &repository.Chantier{
		Name:      "Piscine enterrée",
		ClientID:  dupont.ID,
		StartDate: today.AddDate(0, 0, -3).Format("2006-01-02"),
		Duration:  "3 semaines",
		Status:    types.ChantierInProgress,
	}
	terrasse := &repository.Chantier{
		Name:      "Terrasse bois",
		ClientID:  dupont.ID,
		StartDate: today.AddDate(0, 0, 10).Format("2006-01-02"),
		Duration:  "10 jours",
		Status:    types.ChantierPlanned,
	}
	parc := &repository.Chantier{
		Name:      "Aménagement paysager du parc",
		ClientID:  mairie.ID,
		StartDate: today.AddDate(0, -2, 0).Format("2006-01-02"),
		Duration:  "1 mois",
		Status:    types.ChantierDone,
	}
	for _, ch := range []*repository.Chantier{piscine, terrasse, parc} {
		if err := repos.ChantierRepo.Create(ctx, ch); err != nil {
			return fmt.Errorf("seed: create chantier %s: %w", ch.Name, err)
		}
	}
	logger.Info("✅ [Seed] Created chantiers", "count", 3)

	// ============================================
	// TEAM
	// ============================================
	paul := &repository.TeamMember{
		Name: "Paul Martin", Role: "Chef de chantier", Email: "paul.martin@example.com",
		Phone: stringPtr("06 11 22 33 44"), Status: types.MemberActive, LoginCode: "PAUL2024",
	}
	lea := &repository.TeamMember{
		Name: "Léa Bernard", Role: "Maçonne", Email: "lea.bernard@example.com",
		Status: types.MemberActive, LoginCode: "LEA2024",
	}
	marc := &repository.TeamMember{
		Name: "Marc Petit", Role: "Menuisier", Email: "marc.petit@example.com",
		Status: types.MemberInactive, LoginCode: "MARC2024",
	}
	for _, m := range []*repository.TeamMember{paul, lea, marc} {
		if err := repos.TeamMemberRepo.Create(ctx, m); err != nil {
			return fmt.Errorf("seed: create team member %s: %w", m.Name, err)
		}
	}
	logger.Info("✅ [Seed] Created team members", "count", 3)

	// ============================================
	// ASSIGNMENTS
	// ============================================
	pairs := []struct {
		chantier *repository.Chantier
		member   *repository.TeamMember
	}{
		{piscine, paul}, {piscine, lea}, {terrasse, paul}, {parc, lea},
	}
	for _, p := range pairs {
		a := &repository.Assignment{ChantierID: p.chantier.ID, TeamMemberID: p.member.ID}
		if err := repos.AssignmentRepo.Create(ctx, a); err != nil {
			return fmt.Errorf("seed: assign %s to %s: %w", p.member.Name, p.chantier.Name, err)
		}
	}
	logger.Info("✅ [Seed] Created assignments", "count", len(pairs))

	logger.Info("[Seed] 🎉 Development data ready", "admin", AdminUsername)
	return nil
}

func stringPtr(s string) *string {
	return &s
}
