package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sharebite/internal/auth"
	"sharebite/internal/metrics"
	"sharebite/internal/model"
	"sharebite/internal/repository"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockNgoRepository is a mock implementation of NgoRepository.
type MockNgoRepository struct {
	mock.Mock
}

func (m *MockNgoRepository) Create(ctx context.Context, ngo *model.Ngo) error {
	args := m.Called(ctx, ngo)
	return args.Error(0)
}

func (m *MockNgoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ngo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ngo), args.Error(1)
}

func (m *MockNgoRepository) FindByEmail(ctx context.Context, email string) (*model.Ngo, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ngo), args.Error(1)
}

// MockListingRepository is a mock implementation of ListingRepository.
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *model.FoodListing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *model.FoodListing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FoodListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FoodListing), args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]model.FoodListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FoodListing), args.Error(1)
}

func (m *MockListingRepository) Reserve(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Complete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Release(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockClaimRepository is a mock implementation of ClaimRepository.
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *model.ClaimRecord) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*model.ClaimRecord, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRecord), args.Error(1)
}

func (m *MockClaimRepository) FindByCollector(ctx context.Context, collectorID uuid.UUID) ([]model.ClaimRecord, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ClaimRecord), args.Error(1)
}

func (m *MockClaimRepository) MarkCompleted(ctx context.Context, listingID uuid.UUID, completedAt time.Time) error {
	args := m.Called(ctx, listingID, completedAt)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, data auth.RefreshTokenData, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, data, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (*auth.RefreshTokenData, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshTokenData), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// memoryKV is an in-memory stand-in for the redis-backed cache client.
type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string][]byte{}}
}

func (kv *memoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.data[key], nil
}

func (kv *memoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
	return nil
}

func (kv *memoryKV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}
