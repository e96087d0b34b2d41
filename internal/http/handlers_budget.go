package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finanzas/internal/core"
)

type budgetRequest struct {
	Categoria     string     `json:"categoria"`
	LimiteMensual core.Money `json:"limite_mensual"`
}

type budgetResponse struct {
	Categoria     string     `json:"categoria"`
	LimiteMensual core.Money `json:"limite_mensual"`
	Actualizado   time.Time  `json:"actualizado"`
}

type budgetAlertResponse struct {
	Categoria  string     `json:"categoria"`
	Limite     core.Money `json:"limite"`
	Gastado    core.Money `json:"gastado"`
	Porcentaje int        `json:"porcentaje"`
	Nivel      string     `json:"nivel"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		Categoria:     b.Category,
		LimiteMensual: b.MonthlyLimit,
		Actualizado:   b.UpdatedAt,
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	budgets, err := s.budgets.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos")
		return
	}

	saved, err := s.budgets.Upsert(r.Context(), core.Budget{
		UserID:       id.UserID,
		Category:     req.Categoria,
		MonthlyLimit: req.LimiteMensual,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetResponse(saved))
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	alerts, err := s.budgets.Alerts(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, budgetAlertResponse{
			Categoria:  a.Category,
			Limite:     a.Limit,
			Gastado:    a.Spent,
			Porcentaje: a.Percent,
			Nivel:      string(a.Level),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	category := chi.URLParam(r, "categoria")
	if category == "" {
		badRequest(w, "Categoría requerida")
		return
	}

	if err := s.budgets.Delete(r.Context(), id.UserID, category); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Presupuesto eliminado", "categoria": category})
}
