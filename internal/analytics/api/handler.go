package api

import (
	"fmt"
	"net/http"

	"ms-orders/internal/analytics"
	"ms-orders/internal/auth"
	"ms-orders/internal/logger"
	"ms-orders/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// GetDashboardStats handles GET /dashboard/stats?period=
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	period, err := analytics.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	dashboard, err := h.Service.GetDashboard(r.Context(), period, auth.Role(r.Context()), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetDashboardStats: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("dashboard stats", dashboard))
}
