package http

import (
	"net/http"

	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/egannguyen/sales-orders/internal/service"
)

type updateClientRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
}

func (h *Handler) handleGetClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.Clients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) handleGetSellerClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.SellerClients(r.Context(), sellerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Client(r.Context(), sellerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req service.ClientParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.clients.CreateClient(r.Context(), sellerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.clients.UpdateClient(r.Context(), sellerID(r), r.PathValue("id"), repository.ClientUpdate{
		Name:    req.Name,
		Surname: req.Surname,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.clients.DeleteClient(r.Context(), sellerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: id})
}
