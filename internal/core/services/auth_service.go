package services

import (
	"context"
	"errors"
	"log"

	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/config"
	"xcr-courtage/internal/core/domain"
	"xcr-courtage/internal/pkg/jwt"
	"xcr-courtage/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles advisor authentication business logic
type AuthService struct {
	advisorRepo      repositories.AdvisorRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	advisorRepo repositories.AdvisorRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		advisorRepo:      advisorRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents advisor registration input
type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Advisor      *models.AdvisorResponse `json:"advisor"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
}

// Register registers a new advisor
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check if email already exists
	exists, err := s.advisorRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAdvisorAlreadyExists
	}

	// 2. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 3. Create advisor
	advisor := &models.Advisor{
		FullName: input.FullName,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     "ADVISOR",
		IsActive: true,
	}

	if err := s.advisorRepo.Create(ctx, advisor); err != nil {
		return nil, err
	}

	// 4. Generate tokens
	tokens, err := s.generateTokens(advisor)
	if err != nil {
		return nil, err
	}

	// 5. Store refresh token
	if err := s.storeRefreshToken(ctx, advisor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Advisor registered: %s", advisor.Email)

	return &AuthResponse{
		Advisor:      advisor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates an advisor
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find advisor by email
	advisor, err := s.advisorRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if advisor is active
	if !advisor.IsActive {
		return nil, domain.ErrAdvisorInactive
	}

	// 3. Verify password
	if !password.Verify(input.Password, advisor.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 4. Generate tokens
	tokens, err := s.generateTokens(advisor)
	if err != nil {
		return nil, err
	}

	// 5. Store refresh token
	if err := s.storeRefreshToken(ctx, advisor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Advisor logged in: %s", advisor.Email)

	return &AuthResponse{
		Advisor:      advisor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	// 4. Check if token is revoked
	if storedToken.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}

	// 5. Check if token is expired
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// 6. Get advisor
	advisor, err := s.advisorRepo.GetByID(ctx, claims.AdvisorID)
	if err != nil {
		return nil, domain.ErrAdvisorNotFound
	}

	// 7. Check if advisor is active
	if !advisor.IsActive {
		return nil, domain.ErrAdvisorInactive
	}

	// 8. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 9. Generate new tokens
	tokens, err := s.generateTokens(advisor)
	if err != nil {
		return nil, err
	}

	// 10. Store new refresh token
	if err := s.storeRefreshToken(ctx, advisor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for advisor: %s", advisor.Email)

	return &AuthResponse{
		Advisor:      advisor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ Advisor logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an advisor
func (s *AuthService) LogoutAll(ctx context.Context, advisorID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByAdvisorID(ctx, advisorID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for advisor ID: %d", advisorID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetAdvisorByID gets an advisor by ID
func (s *AuthService) GetAdvisorByID(ctx context.Context, advisorID uint) (*models.Advisor, error) {
	return s.advisorRepo.GetByID(ctx, advisorID)
}

// ListAdvisors lists advisor accounts (admin only)
func (s *AuthService) ListAdvisors(ctx context.Context, offset, limit int) ([]*models.AdvisorResponse, int64, error) {
	advisors, total, err := s.advisorRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.AdvisorResponse, 0, len(advisors))
	for _, advisor := range advisors {
		responses = append(responses, advisor.ToResponse())
	}
	return responses, total, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(advisor *models.Advisor) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		advisor.ID,
		advisor.Email,
		advisor.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		advisor.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, advisorID uint, refreshToken string) error {
	token := &models.RefreshToken{
		AdvisorID: advisorID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
