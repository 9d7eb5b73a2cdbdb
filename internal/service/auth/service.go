package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmagtibay/clinic-api/internal/email"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/pkg/auth"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/security"
)

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user"`
}

type Servicer interface {
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// ResetPassword consumes a reset token, activating the account. This is
	// how auto-provisioned patients claim their login.
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*model.User, error)
}

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	emailSvc  email.Service
	logger    *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		emailSvc:  emailSvc,
		logger:    logger,
	}
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenPair, error) {
	var user *model.User
	var err error
	if strings.Contains(req.Login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, req.Login)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Login)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is not active")
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return s.issueTokens(user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is not active")
	}

	return s.issueTokens(user)
}

func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.tokenRepo.ResetPassword(ctx, req.Token, hash)
	if err != nil {
		return nil, err
	}

	// The account is active either way; the welcome mail is best-effort.
	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
		s.logger.Error(err, "failed to send welcome mail", "user_id", user.ID.String())
	}

	s.logger.Info("password reset completed", "user_id", user.ID.String())
	return user, nil
}

func (s *Service) issueTokens(user *model.User) (*TokenPair, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
