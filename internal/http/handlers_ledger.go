package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finanzas/internal/core"
)

type entryRequest struct {
	Concepto  string     `json:"concepto"`
	Categoria string     `json:"categoria"`
	Semanal   core.Money `json:"semanal"`
	Mensual   core.Money `json:"mensual"`
}

type categoryRequest struct {
	Categoria string `json:"categoria"`
}

type entryResponse struct {
	ID            int64      `json:"id"`
	Concepto      string     `json:"concepto"`
	Categoria     string     `json:"categoria"`
	Semanal       core.Money `json:"semanal"`
	Mensual       core.Money `json:"mensual"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
}

func toEntryResponse(e core.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		Concepto:      e.Concept,
		Categoria:     e.Category,
		Semanal:       e.Weekly,
		Mensual:       e.Monthly,
		FechaCreacion: e.CreatedAt,
	}
}

// entryRoutes builds the shared route set for one entry kind. Expenses and
// incomes have identical shapes; only the kind differs.
func (s *Server) entryRoutes(kind core.EntryKind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", s.handleListEntries(kind))
		r.Post("/", s.handleCreateEntry(kind))
		r.Put("/{id}/categoria", s.handleUpdateEntryCategory(kind))
		r.Delete("/{id}", s.handleDeleteEntry(kind))
	}
}

func (s *Server) handleListEntries(kind core.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity(r)

		entries, err := s.ledger.List(r.Context(), id.UserID, kind)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleCreateEntry(kind core.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity(r)

		var req entryRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "Faltan datos")
			return
		}

		created, err := s.ledger.Create(r.Context(), core.Entry{
			UserID:   id.UserID,
			Kind:     kind,
			Concept:  req.Concepto,
			Category: req.Categoria,
			Weekly:   req.Semanal,
			Monthly:  req.Mensual,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEntryResponse(created))
	}
}

func (s *Server) handleUpdateEntryCategory(kind core.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity(r)

		entryID, err := pathID(r)
		if err != nil {
			badRequest(w, "Identificador inválido")
			return
		}

		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "Faltan datos")
			return
		}

		updated, err := s.ledger.UpdateCategory(r.Context(), id.UserID, entryID, kind, req.Categoria)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toEntryResponse(updated))
	}
}

func (s *Server) handleDeleteEntry(kind core.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity(r)

		entryID, err := pathID(r)
		if err != nil {
			badRequest(w, "Identificador inválido")
			return
		}

		if err := s.ledger.Delete(r.Context(), id.UserID, entryID, kind); err != nil {
			writeError(w, r, err)
			return
		}

		message := "Gasto eliminado"
		if kind == core.KindIncome {
			message = "Ingreso eliminado"
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": message, "id": entryID})
	}
}
