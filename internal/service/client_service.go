package service

import (
	"context"
	"strings"
	"time"

	"github.com/egannguyen/sales-orders/internal/authz"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/google/uuid"
)

// ClientService manages customer accounts. Reads and writes of a single
// client are restricted to its owning seller.
type ClientService struct {
	clients repository.ClientRepository
	now     func() time.Time
}

func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients, now: time.Now}
}

type ClientParams struct {
	Name    string  `json:"name"`
	Surname string  `json:"surname"`
	Company string  `json:"company"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
}

// Clients lists every client regardless of owner.
func (s *ClientService) Clients(ctx context.Context) ([]entity.Client, error) {
	return s.clients.FindAll(ctx)
}

// SellerClients lists the clients owned by sellerID.
func (s *ClientService) SellerClients(ctx context.Context, sellerID string) ([]entity.Client, error) {
	if err := requireSeller(sellerID); err != nil {
		return nil, err
	}
	return s.clients.FindBySeller(ctx, strings.TrimSpace(sellerID))
}

func (s *ClientService) Client(ctx context.Context, sellerID, id string) (*entity.Client, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, entity.ErrClientNotFound)
	}
	if err := authz.Authorize(sellerID, *c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) CreateClient(ctx context.Context, sellerID string, p ClientParams) (*entity.Client, error) {
	if err := requireSeller(sellerID); err != nil {
		return nil, err
	}
	if err := required("name", p.Name, "surname", p.Surname, "company", p.Company, "email", p.Email); err != nil {
		return nil, err
	}

	c, err := s.clients.Insert(ctx, entity.Client{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(p.Name),
		Surname:   strings.TrimSpace(p.Surname),
		Company:   strings.TrimSpace(p.Company),
		Email:     strings.TrimSpace(p.Email),
		Phone:     p.Phone,
		SellerID:  strings.TrimSpace(sellerID),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, duplicateEmail(err)
	}
	return c, nil
}

// UpdateClient applies a partial update. Ownership cannot change.
func (s *ClientService) UpdateClient(ctx context.Context, sellerID, id string, upd repository.ClientUpdate) (*entity.Client, error) {
	if _, err := s.Client(ctx, sellerID, id); err != nil {
		return nil, err
	}
	for name, v := range map[string]*string{"name": upd.Name, "surname": upd.Surname, "company": upd.Company, "email": upd.Email} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, entity.InvalidInputf("%s must not be blank", name)
		}
	}

	c, err := s.clients.Update(ctx, id, upd)
	if err != nil {
		return nil, duplicateEmail(notFound(err, entity.ErrClientNotFound))
	}
	return c, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, sellerID, id string) error {
	if _, err := s.Client(ctx, sellerID, id); err != nil {
		return err
	}
	return notFound(s.clients.Delete(ctx, id), entity.ErrClientNotFound)
}
