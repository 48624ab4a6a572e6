package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	pkgauth "github.com/hasanmehediii/cardealer-backend/pkg/auth"
	"github.com/hasanmehediii/cardealer-backend/pkg/auth/session"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/security"
)

// TokenPair is the signed access token plus the rotating refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserDTO is the public view of an account.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Address   *string    `json:"address,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// RegisterInput is the validated signup payload.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	Address     *string
	Phone       *string
	DateOfBirth *time.Time
}

// Service exposes account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Login(ctx context.Context, email, password string) (*UserDTO, *TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID, accessID string) error
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	ShippingAddressFor(ctx context.Context, userID uuid.UUID) (*string, error)
}

type userRepo interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	repo     userRepo
	sessions sessionManager
	carts    *cart.Manager
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
}

func NewService(repo userRepo, sessions sessionManager, carts *cart.Manager, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) Service {
	return &service{
		repo:     repo,
		sessions: sessions,
		carts:    carts,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and username are required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user, err := s.repo.CreateUser(ctx, &models.User{
		Email:        email,
		Username:     input.Username,
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		Address:      input.Address,
		Phone:        input.Phone,
		DateOfBirth:  input.DateOfBirth,
		IsActive:     true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or username already taken")
	}
	return toUserDTO(user), nil
}

func (s *service) Login(ctx context.Context, email, password string) (*UserDTO, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if !user.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLoginAt = &now
	}
	return toUserDTO(user), pair, nil
}

// Logout revokes the session and drops the user's in-memory cart.
func (s *service) Logout(ctx context.Context, userID uuid.UUID, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	if s.carts != nil {
		s.carts.Drop(userID)
	}
	return nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		JTI:      newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: newRefresh}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return toUserDTO(user), nil
}

// ShippingAddressFor feeds the purchase flow's fulfillment order.
func (s *service) ShippingAddressFor(ctx context.Context, userID uuid.UUID) (*string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Address, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := session.NewAccessID()
	signed, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing session")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: refresh}, nil
}

func toUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role.String(),
		Address:   user.Address,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLoginAt,
	}
}
