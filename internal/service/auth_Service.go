package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/types"
)

// ============================================
// Auth Service
// ============================================

// Principal is the authenticated caller carried by an access token.
type Principal struct {
	Subject string
	Role    string
	Name    string
}

// ReadOnly reports whether the principal may only read.
func (p *Principal) ReadOnly() bool {
	return p.Role != types.RoleUser
}

type AuthService interface {
	// Register creates a user account. Once a user exists, only a writer
	// principal may register others unless open registration is enabled.
	Register(ctx context.Context, username, password string, byWriter bool) (*repository.User, string, string, error)
	Login(ctx context.Context, username, password string) (*repository.User, string, string, error)
	TeamLogin(ctx context.Context, loginCode, remoteAddr string) (*repository.TeamMember, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(token string) (*Principal, error)
	Authenticate(token string) (string, string, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

type authService struct {
	cfg        *config.Config
	userRepo   repository.UserRepository
	memberRepo repository.TeamMemberRepository
	limiter    Limiter
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, memberRepo repository.TeamMemberRepository, limiter Limiter) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, memberRepo: memberRepo, limiter: limiter}
}

func (s *authService) Register(ctx context.Context, username, password string, byWriter bool) (*repository.User, string, string, error) {
	if !byWriter && !s.cfg.AllowRegistration {
		n, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to count users: %w", err)
		}
		if n > 0 {
			return nil, "", "", ErrRegistrationClosed
		}
	}

	username = strings.TrimSpace(username)
	v := violations{}
	v.require("username", username)
	if len(password) < 6 {
		v["password"] = "must be at least 6 characters"
	}
	if err := v.err(); err != nil {
		return nil, "", "", err
	}

	existingUser, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to look up user: %w", err)
	}
	if existingUser != nil {
		return nil, "", "", ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &repository.User{
		Username: username,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", "", ErrUserExists
		}
		return nil, "", "", fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*repository.User, string, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil || user == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

// TeamLogin exchanges a member login code for a read-only access token.
// Team sessions carry no refresh token.
func (s *authService) TeamLogin(ctx context.Context, loginCode, remoteAddr string) (*repository.TeamMember, string, error) {
	if s.limiter != nil && s.cfg.TeamLoginMaxAttempts > 0 {
		window := time.Duration(s.cfg.TeamLoginWindowMin) * time.Minute
		count, err := s.limiter.Hit(ctx, "team-login:"+remoteAddr, window)
		if err != nil {
			logger.Warn("[Auth] rate limiter unavailable", "error", err)
		} else if count > int64(s.cfg.TeamLoginMaxAttempts) {
			return nil, "", ErrTooManyAttempts
		}
	}

	loginCode = strings.TrimSpace(loginCode)
	if loginCode == "" {
		return nil, "", ErrInvalidCredentials
	}

	member, err := s.memberRepo.FindByLoginCode(ctx, loginCode)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up login code: %w", err)
	}
	if member == nil || member.Status != types.MemberActive {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sign(member.ID, types.RoleTeam, member.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return member, token, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return "", "", ErrInvalidToken
	}

	// Only the caller whose delete removed the token may rotate it.
	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if time.Now().After(rt.ExpiresAt) {
		return "", "", ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return "", "", ErrInvalidToken
	}

	accessToken, newRefreshToken, err := s.generateTokens(ctx, user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	err := s.userRepo.DeleteRefreshToken(ctx, refreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *authService) ValidateToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role != types.RoleUser && role != types.RoleTeam {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)

	return &Principal{Subject: subject, Role: role, Name: name}, nil
}

// Authenticate adapts ValidateToken to the websocket handler.
func (s *authService) Authenticate(token string) (string, string, error) {
	p, err := s.ValidateToken(token)
	if err != nil {
		return "", "", err
	}
	return p.Subject, p.Role, nil
}

func (s *authService) PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	return s.userRepo.DeleteExpiredRefreshTokens(ctx, now)
}

func (s *authService) sign(subject, role, name string) (string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat":  time.Now().Unix(),
	})
	return accessToken.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) generateTokens(ctx context.Context, user *repository.User) (string, string, error) {
	accessTokenString, err := s.sign(user.ID, types.RoleUser, user.Username)
	if err != nil {
		return "", "", err
	}

	refreshTokenString := uuid.New().String()
	refreshTokenExpiry := time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry))

	rt := &repository.RefreshToken{
		Token:     refreshTokenString,
		UserID:    user.ID,
		ExpiresAt: refreshTokenExpiry,
	}

	if err := s.userRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}
