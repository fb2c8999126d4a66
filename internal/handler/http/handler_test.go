package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yosefkovan/storefront/internal/auth"
	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/event"
	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/internal/service"
	"github.com/yosefkovan/storefront/internal/storage"
	"github.com/yosefkovan/storefront/pkg/health"
	pkgkafka "github.com/yosefkovan/storefront/pkg/kafka"
)

// =============================================================================
// Repository mocks
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepo) Summary(ctx context.Context, productID string) (float64, int, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepo) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockStatsRepo struct {
	mock.Mock
}

func (m *mockStatsRepo) StoreStats(ctx context.Context) (*domain.StoreStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoreStats), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStore) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Test environment
// =============================================================================

type testEnv struct {
	products   *mockProductRepo
	categories *mockCategoryRepo
	reviews    *mockReviewRepo
	orders     *mockOrderRepo
	users      *mockUserRepo
	carts      *mockCartRepo
	stats      *mockStatsRepo
	store      *mockStore

	jwt    *auth.JWTManager
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)
	jwt := auth.NewJWTManager("test-secret", time.Hour)

	env := &testEnv{
		products:   new(mockProductRepo),
		categories: new(mockCategoryRepo),
		reviews:    new(mockReviewRepo),
		orders:     new(mockOrderRepo),
		users:      new(mockUserRepo),
		carts:      new(mockCartRepo),
		stats:      new(mockStatsRepo),
		store:      new(mockStore),
		jwt:        jwt,
	}

	cartService := service.NewCartService(env.carts, env.products, logger)

	env.router = NewRouter(RouterConfig{
		Products:      service.NewProductService(env.products, env.reviews, env.store, producer, logger),
		Categories:    service.NewCategoryService(env.categories, logger),
		Carts:         cartService,
		Orders:        service.NewOrderService(env.orders, env.users, cartService, producer, logger),
		Reviews:       service.NewReviewService(env.reviews, env.products, env.users, producer, logger),
		Users:         service.NewUserService(env.users, jwt, producer, logger),
		Stats:         service.NewStatsService(env.stats, logger),
		ValidateToken: jwt.ValidateToken,
		Health:        health.NewHandler(),
		SessionTTL:    24 * time.Hour,
		Logger:        logger,
	})

	return env
}

func (e *testEnv) tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
