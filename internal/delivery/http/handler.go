package http

import (
	"net/http"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	users    *service.UserService
	products *service.ProductService
	clients  *service.ClientService
	orders   *service.OrderService
	reports  *service.ReportService
	tokens   *auth.TokenIssuer
}

type Services struct {
	Users    *service.UserService
	Products *service.ProductService
	Clients  *service.ClientService
	Orders   *service.OrderService
	Reports  *service.ReportService
}

func NewHandler(svc Services, tokens *auth.TokenIssuer) *Handler {
	return &Handler{
		users:    svc.Users,
		products: svc.Products,
		clients:  svc.Clients,
		orders:   svc.Orders,
		reports:  svc.Reports,
		tokens:   tokens,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.handleRegisterUser)
	mux.HandleFunc("POST /api/auth/token", h.handleAuthenticate)
	mux.HandleFunc("GET /api/me", h.requireAuth(h.handleCurrentUser))

	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("POST /api/products", h.requireAuth(h.handleCreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.requireAuth(h.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.requireAuth(h.handleDeleteProduct))

	mux.HandleFunc("GET /api/clients", h.requireAuth(h.handleGetClients))
	mux.HandleFunc("GET /api/me/clients", h.requireAuth(h.handleGetSellerClients))
	mux.HandleFunc("GET /api/clients/{id}", h.requireAuth(h.handleGetClient))
	mux.HandleFunc("POST /api/clients", h.requireAuth(h.handleCreateClient))
	mux.HandleFunc("PUT /api/clients/{id}", h.requireAuth(h.handleUpdateClient))
	mux.HandleFunc("DELETE /api/clients/{id}", h.requireAuth(h.handleDeleteClient))

	mux.HandleFunc("GET /api/orders", h.requireAuth(h.handleGetOrders))
	mux.HandleFunc("GET /api/me/orders", h.requireAuth(h.handleGetSellerOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireAuth(h.handleGetOrder))
	mux.HandleFunc("GET /api/orders/{id}/history", h.requireAuth(h.handleGetOrderHistory))
	mux.HandleFunc("POST /api/orders", h.requireAuth(h.handleCreateOrder))
	mux.HandleFunc("PUT /api/orders/{id}", h.requireAuth(h.handleReviseOrder))
	mux.HandleFunc("DELETE /api/orders/{id}", h.requireAuth(h.handleDeleteOrder))

	mux.HandleFunc("GET /api/reports/top-clients", h.handleTopClients)
	mux.HandleFunc("GET /api/reports/top-sellers", h.handleTopSellers)
}

// Routes returns the full middleware chain around the API routes.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return logRequests(enableCORS(h.authenticate(mux)))
}
