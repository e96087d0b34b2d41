package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
)

type goalRequest struct {
	Nombre        string     `json:"nombre"`
	MontoObjetivo core.Money `json:"monto_objetivo"`
	FechaObjetivo string     `json:"fecha_objetivo"`
}

type assignSavingsRequest struct {
	Monto core.Money `json:"monto"`
}

type goalResponse struct {
	ID            int64      `json:"id"`
	Nombre        string     `json:"nombre"`
	MontoObjetivo core.Money `json:"monto_objetivo"`
	MontoActual   core.Money `json:"monto_actual"`
	FechaObjetivo *time.Time `json:"fecha_objetivo"`
	Conseguida    bool       `json:"conseguida"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Nombre:        g.Name,
		MontoObjetivo: g.TargetAmount,
		MontoActual:   g.CurrentAmount,
		FechaObjetivo: g.TargetDate,
		Conseguida:    g.Achieved(),
		FechaCreacion: g.CreatedAt,
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	goals, err := s.goals.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos")
		return
	}

	goal := core.Goal{
		UserID:       id.UserID,
		Name:         req.Nombre,
		TargetAmount: req.MontoObjetivo,
	}
	if req.FechaObjetivo != "" {
		target, err := parsePurchaseDate(req.FechaObjetivo)
		if err != nil {
			badRequest(w, "Fecha objetivo inválida")
			return
		}
		goal.TargetDate = &target
	}

	created, err := s.goals.Create(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleAssignSavings(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	goalID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	var req assignSavingsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos")
		return
	}

	updated, err := s.goals.AssignSavings(r.Context(), id.UserID, goalID, req.Monto)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	goalID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	if err := s.goals.Delete(r.Context(), id.UserID, goalID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Meta eliminada", "id": goalID})
}
