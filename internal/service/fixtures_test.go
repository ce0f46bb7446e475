package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/messaging"
	"github.com/egannguyen/sales-orders/internal/repository/postgres"
	"github.com/egannguyen/sales-orders/internal/service"
	"github.com/egannguyen/sales-orders/internal/testutil"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic string
	key   string
	env   messaging.Envelope
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, env: event.(messaging.Envelope)})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.env.Type)
	}
	return out
}

type env struct {
	db        *database.DB
	users     *service.UserService
	products  *service.ProductService
	clients   *service.ClientService
	orders    *service.OrderService
	reports   *service.ReportService
	publisher *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store := postgres.NewStore(db)
	repos := store.Repositories()
	pub := &recordingPublisher{}

	return &env{
		db:        db,
		users:     service.NewUserService(repos.Users, auth.NewTokenIssuer([]byte("test-secret"), time.Hour)),
		products:  service.NewProductService(repos.Products),
		clients:   service.NewClientService(repos.Clients),
		orders:    service.NewOrderService(repos, store, pub, "orders.events"),
		reports:   service.NewReportService(repos.Reports, nil),
		publisher: pub,
	}
}

func (e *env) seller(t *testing.T, email string) *entity.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), service.RegisterUserParams{
		Name:     "Seller",
		Surname:  "Test",
		Email:    email,
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func (e *env) client(t *testing.T, sellerID, email string) *entity.Client {
	t.Helper()
	c, err := e.clients.CreateClient(context.Background(), sellerID, service.ClientParams{
		Name:    "Client",
		Surname: "Test",
		Company: "Acme",
		Email:   email,
	})
	require.NoError(t, err)
	return c
}

func (e *env) product(t *testing.T, name string, stock int) string {
	t.Helper()
	return testutil.InsertProduct(t, e.db, name, stock, 10)
}

func (e *env) stock(t *testing.T, productID string) int {
	t.Helper()
	return testutil.ProductStock(t, e.db, productID)
}

func statusPtr(s entity.OrderStatus) *entity.OrderStatus { return &s }
