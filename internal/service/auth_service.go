package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sharebite/internal/auth"
	errs "sharebite/internal/errors"
	"sharebite/internal/model"
	"sharebite/internal/repository"
)

const bcryptCost = 10

// TokenPair bundles the access and refresh tokens issued at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// NgoRegistration carries the fields required to register an NGO.
type NgoRegistration struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	Address      string
	Nickname     string
	Availability string
}

// AuthService handles registration, login and token lifecycle for both
// user and NGO accounts.
type AuthService interface {
	RegisterUser(ctx context.Context, name, email, password string, role model.Role) (TokenPair, *model.User, error)
	LoginUser(ctx context.Context, email, password string) (TokenPair, *model.User, error)
	RegisterNgo(ctx context.Context, in NgoRegistration) (TokenPair, *model.Ngo, error)
	LoginNgo(ctx context.Context, email, password string) (TokenPair, *model.Ngo, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ResolveIdentity(ctx context.Context, id uuid.UUID, kind model.IdentityKind) (*auth.Identity, error)
}

type authService struct {
	userRepo   repository.UserRepository
	ngoRepo    repository.NgoRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, ngoRepo repository.NgoRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		ngoRepo:    ngoRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// RegisterUser creates a donor or collector account with a hashed password.
// A duplicate email leaves the existing record untouched.
func (s *authService) RegisterUser(ctx context.Context, name, email, password string, role model.Role) (TokenPair, *model.User, error) {
	if role != model.RoleDonor && role != model.RoleCollector {
		return TokenPair{}, nil, fmt.Errorf("%w: role must be donor or collector", errs.ErrValidation)
	}

	if err := s.checkEmailFree(ctx, email); err != nil {
		return TokenPair{}, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// checkEmailFree is a pre-check only; a concurrent registration
		// surfaces here as the unique-index violation.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return TokenPair{}, nil, errs.ErrEmailTaken
		}
		return TokenPair{}, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user.ID, user.Email, user.Role, model.IdentityKindUser)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return tokens, user, nil
}

// LoginUser authenticates a user account and issues tokens. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *authService) LoginUser(ctx context.Context, email, password string) (TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, nil, errs.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID, user.Email, user.Role, model.IdentityKindUser)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return tokens, user, nil
}

// RegisterNgo creates an NGO account. NGOs carry the fixed ngo role.
func (s *authService) RegisterNgo(ctx context.Context, in NgoRegistration) (TokenPair, *model.Ngo, error) {
	if err := s.checkEmailFree(ctx, in.Email); err != nil {
		return TokenPair{}, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("hash password: %w", err)
	}

	ngo := &model.Ngo{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hashed),
		Phone:        in.Phone,
		Address:      in.Address,
		Nickname:     in.Nickname,
		Availability: in.Availability,
	}
	if err := s.ngoRepo.Create(ctx, ngo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return TokenPair{}, nil, errs.ErrEmailTaken
		}
		return TokenPair{}, nil, fmt.Errorf("create ngo: %w", err)
	}

	tokens, err := s.issueTokens(ctx, ngo.ID, ngo.Email, model.RoleNgo, model.IdentityKindNgo)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return tokens, ngo, nil
}

// LoginNgo authenticates an NGO account and issues tokens.
func (s *authService) LoginNgo(ctx context.Context, email, password string) (TokenPair, *model.Ngo, error) {
	ngo, err := s.ngoRepo.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ngo.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, nil, errs.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, ngo.ID, ngo.Email, model.RoleNgo, model.IdentityKindNgo)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return tokens, ngo, nil
}

// Refresh validates a refresh token against the token store and returns a
// new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", errs.ErrInvalidCredentials
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", errs.ErrInvalidCredentials
	}
	if stored.SubjectID != claims.SubjectID || stored.Email != claims.Email {
		return "", errs.ErrInvalidCredentials
	}

	return s.jwtService.GenerateAccessToken(stored.SubjectID, stored.Email, stored.Role, stored.Kind)
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return errs.ErrInvalidCredentials
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

// ResolveIdentity looks the subject up in users first, then NGOs, so one
// verify path serves both account collections.
func (s *authService) ResolveIdentity(ctx context.Context, id uuid.UUID, kind model.IdentityKind) (*auth.Identity, error) {
	if kind != model.IdentityKindNgo {
		if user, err := s.userRepo.FindByID(ctx, id); err == nil {
			return &auth.Identity{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
				Kind:  model.IdentityKindUser,
			}, nil
		}
	}
	ngo, err := s.ngoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return &auth.Identity{
		ID:    ngo.ID,
		Name:  ngo.Name,
		Email: ngo.Email,
		Role:  model.RoleNgo,
		Kind:  model.IdentityKindNgo,
	}, nil
}

// checkEmailFree rejects registration when the email exists in either
// account collection, matching case-insensitively.
func (s *authService) checkEmailFree(ctx context.Context, email string) error {
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return errs.ErrEmailTaken
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("check user email: %w", err)
	}
	if existing, err := s.ngoRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return errs.ErrEmailTaken
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("check ngo email: %w", err)
	}
	return nil
}

// issueTokens generates an access/refresh pair and records the refresh token.
func (s *authService) issueTokens(ctx context.Context, id uuid.UUID, email string, role model.Role, kind model.IdentityKind) (TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(id, email, role, kind)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(id, email, role, kind)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	data := auth.RefreshTokenData{SubjectID: id, Email: email, Role: role, Kind: kind}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, data, auth.RefreshTokenExpiry); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
