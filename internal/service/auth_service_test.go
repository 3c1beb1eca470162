package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sharebite/internal/auth"
	errs "sharebite/internal/errors"
	"sharebite/internal/model"
)

func TestAuthService_RegisterUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		userName      string
		role          model.Role
		setupMock     func(*MockUserRepository, *MockNgoRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful donor registration",
			email:    "donor@example.com",
			password: "password123",
			userName: "Daily Bread Bakery",
			role:     model.RoleDonor,
			setupMock: func(users *MockUserRepository, ngos *MockNgoRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "donor@example.com").Return(nil, gorm.ErrRecordNotFound)
				ngos.On("FindByEmail", mock.Anything, "donor@example.com").Return(nil, gorm.ErrRecordNotFound)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				tokens.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "duplicate email",
			email:    "existing@example.com",
			password: "password123",
			userName: "Existing User",
			role:     model.RoleCollector,
			setupMock: func(users *MockUserRepository, ngos *MockNgoRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errs.ErrEmailTaken,
		},
		{
			name:     "email registered as ngo",
			email:    "ngo@example.com",
			password: "password123",
			userName: "Someone",
			role:     model.RoleCollector,
			setupMock: func(users *MockUserRepository, ngos *MockNgoRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "ngo@example.com").Return(nil, gorm.ErrRecordNotFound)
				ngos.On("FindByEmail", mock.Anything, "ngo@example.com").Return(&model.Ngo{Email: "ngo@example.com"}, nil)
			},
			expectedError: errs.ErrEmailTaken,
		},
		{
			// The email pre-check passes but a concurrent registration wins
			// the insert; the unique-index violation maps to EmailTaken.
			name:     "duplicate email lost to a concurrent insert",
			email:    "raced@example.com",
			password: "password123",
			userName: "Raced User",
			role:     model.RoleCollector,
			setupMock: func(users *MockUserRepository, ngos *MockNgoRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "raced@example.com").Return(nil, gorm.ErrRecordNotFound)
				ngos.On("FindByEmail", mock.Anything, "raced@example.com").Return(nil, gorm.ErrRecordNotFound)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errs.ErrEmailTaken,
		},
		{
			name:          "ngo role rejected for plain users",
			email:         "someone@example.com",
			password:      "password123",
			userName:      "Someone",
			role:          model.RoleNgo,
			setupMock:     func(users *MockUserRepository, ngos *MockNgoRepository, tokens *MockTokenStore) {},
			expectedError: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockNgos := new(MockNgoRepository)
			mockTokens := new(MockTokenStore)
			tt.setupMock(mockUsers, mockNgos, mockTokens)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockUsers, mockNgos, jwtService, mockTokens)

			tokens, user, err := svc.RegisterUser(context.Background(), tt.userName, tt.email, tt.password, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, tt.role, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}

			mockUsers.AssertExpectations(t)
			mockNgos.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "collector@example.com",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				users.On("FindByEmail", mock.Anything, "collector@example.com").Return(&model.User{
					Email:        "collector@example.com",
					PasswordHash: string(hashed),
					Role:         model.RoleCollector,
				}, nil)
				tokens.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "collector@example.com",
			password: "not-the-password",
			setupMock: func(users *MockUserRepository, tokens *MockTokenStore) {
				hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				users.On("FindByEmail", mock.Anything, "collector@example.com").Return(&model.User{
					Email:        "collector@example.com",
					PasswordHash: string(hashed),
					Role:         model.RoleCollector,
				}, nil)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockNgos := new(MockNgoRepository)
			mockTokens := new(MockTokenStore)
			tt.setupMock(mockUsers, mockTokens)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockUsers, mockNgos, jwtService, mockTokens)

			tokens, user, err := svc.LoginUser(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, tokens.AccessToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}

			mockUsers.AssertExpectations(t)
			mockTokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	identity := model.IdentityKindUser
	userID := newUUID(t)

	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID, "c@example.com", model.RoleCollector, identity)
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mockTokens := new(MockTokenStore)
		mockTokens.On("GetRefreshToken", mock.Anything, tokenID).Return(&auth.RefreshTokenData{
			SubjectID: userID,
			Email:     "c@example.com",
			Role:      model.RoleCollector,
			Kind:      identity,
		}, nil)

		svc := NewAuthService(new(MockUserRepository), new(MockNgoRepository), jwtService, mockTokens)
		accessToken, err := svc.Refresh(context.Background(), refreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)

		claims, err := jwtService.ValidateToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, claims.SubjectID)
		assert.Equal(t, model.RoleCollector, claims.Role)
	})

	t.Run("token missing from store", func(t *testing.T) {
		mockTokens := new(MockTokenStore)
		mockTokens.On("GetRefreshToken", mock.Anything, tokenID).Return(nil, assert.AnError)

		svc := NewAuthService(new(MockUserRepository), new(MockNgoRepository), jwtService, mockTokens)
		_, err := svc.Refresh(context.Background(), refreshToken)
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), new(MockNgoRepository), jwtService, new(MockTokenStore))
		_, err := svc.Refresh(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := newUUID(t)
	ngoID := newUUID(t)

	t.Run("user found in users collection", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:    userID,
			Name:  "A Collector",
			Email: "c@example.com",
			Role:  model.RoleCollector,
		}, nil)

		svc := NewAuthService(mockUsers, new(MockNgoRepository), jwtService, new(MockTokenStore))
		identity, err := svc.ResolveIdentity(context.Background(), userID, model.IdentityKindUser)
		assert.NoError(t, err)
		assert.Equal(t, model.RoleCollector, identity.Role)
		assert.Equal(t, model.IdentityKindUser, identity.Kind)
	})

	t.Run("falls back to ngo collection", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, ngoID).Return(nil, gorm.ErrRecordNotFound)
		mockNgos := new(MockNgoRepository)
		mockNgos.On("FindByID", mock.Anything, ngoID).Return(&model.Ngo{
			ID:    ngoID,
			Name:  "Food Rescue",
			Email: "ngo@example.com",
		}, nil)

		svc := NewAuthService(mockUsers, mockNgos, jwtService, new(MockTokenStore))
		identity, err := svc.ResolveIdentity(context.Background(), ngoID, model.IdentityKindUser)
		assert.NoError(t, err)
		assert.Equal(t, model.RoleNgo, identity.Role)
		assert.Equal(t, model.IdentityKindNgo, identity.Kind)
	})

	t.Run("unknown subject", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
		mockNgos := new(MockNgoRepository)
		mockNgos.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockUsers, mockNgos, jwtService, new(MockTokenStore))
		_, err := svc.ResolveIdentity(context.Background(), userID, model.IdentityKindUser)
		assert.Error(t, err)
	})
}
