package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"sharebite/internal/model"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	id := uuid.New()

	token, err := svc.GenerateAccessToken(id, "c@example.com", model.RoleCollector, model.IdentityKindUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, id, claims.SubjectID)
	assert.Equal(t, "c@example.com", claims.Email)
	assert.Equal(t, model.RoleCollector, claims.Role)
	assert.Equal(t, model.IdentityKindUser, claims.Kind)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(uuid.New(), "c@example.com", model.RoleDonor, model.IdentityKindUser)
	assert.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RefreshTokenCarriesID(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, token, err := svc.GenerateRefreshToken(uuid.New(), "ngo@example.com", model.RoleNgo, model.IdentityKindNgo)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	extracted, err := svc.ExtractTokenID(token)
	assert.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_AccessTokenHasNoID(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(uuid.New(), "c@example.com", model.RoleCollector, model.IdentityKindUser)
	assert.NoError(t, err)

	_, err = svc.ExtractTokenID(token)
	assert.Error(t, err)
}
