package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-orders/internal/auth"
	"ms-orders/internal/customer"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/utils"
)

type Handler struct {
	CustomerService *customer.CustomerService
	Logger          *logger.Logger
}

func NewHandler(customerService *customer.CustomerService, log *logger.Logger) *Handler {
	return &Handler{
		CustomerService: customerService,
		Logger:          log,
	}
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCustomer: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.CustomerService.CreateCustomer(r.Context(), req, auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCustomer: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("customer created", created))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	found, err := h.CustomerService.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCustomer: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("customer", found))
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	var req models.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCustomer: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.CustomerService.UpdateCustomer(r.Context(), customerID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCustomer: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("customer updated", updated))
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	if err := h.CustomerService.DeleteCustomer(r.Context(), customerID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCustomer: %v", err))
		utils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	customers, err := h.CustomerService.ListCustomers(r.Context(), search)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCustomers: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("customers", customers))
}
