package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
)

type pantryRequest struct {
	Nombre      string     `json:"nombre"`
	Cantidad    float64    `json:"cantidad"`
	Unidad      string     `json:"unidad"`
	Precio      core.Money `json:"precio"`
	FechaCompra string     `json:"fecha_compra"`
	Duracion    int        `json:"duracion"`
}

type pantryUpdateRequest struct {
	Terminado bool `json:"terminado"`
}

type pantryResponse struct {
	ID              int64      `json:"id"`
	Nombre          string     `json:"nombre"`
	Cantidad        float64    `json:"cantidad"`
	Unidad          string     `json:"unidad"`
	Precio          core.Money `json:"precio"`
	FechaCompra     time.Time  `json:"fecha_compra"`
	Duracion        int        `json:"duracion"`
	Terminado       bool       `json:"terminado"`
	FechaTerminado  *time.Time `json:"fecha_terminado"`
	FechaCreacion   time.Time  `json:"fecha_creacion"`
	DiasDesdeCompra int        `json:"dias_desde_compra"`
	DiasRestantes   int        `json:"dias_restantes"`
	DuracionReal    *int       `json:"duracion_real,omitempty"`
}

func (s *Server) toPantryResponse(p core.PantryItem) pantryResponse {
	now := s.now()
	resp := pantryResponse{
		ID:              p.ID,
		Nombre:          p.Name,
		Cantidad:        p.Quantity,
		Unidad:          p.Unit,
		Precio:          p.Price,
		FechaCompra:     p.PurchasedAt,
		Duracion:        p.DurationDays,
		Terminado:       p.Finished,
		FechaTerminado:  p.FinishedAt,
		FechaCreacion:   p.CreatedAt,
		DiasDesdeCompra: p.DaysSincePurchase(now),
		DiasRestantes:   p.DaysRemaining(now),
	}
	if actual, ok := p.ActualDurationDays(); ok {
		resp.DuracionReal = &actual
	}
	return resp
}

// parsePurchaseDate accepts RFC 3339 timestamps and plain dates.
func parsePurchaseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Server) handleListPantry(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	items, err := s.pantry.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]pantryResponse, 0, len(items))
	for _, p := range items {
		out = append(out, s.toPantryResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePantry(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	var req pantryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos obligatorios")
		return
	}

	item := core.PantryItem{
		UserID:       id.UserID,
		Name:         req.Nombre,
		Quantity:     req.Cantidad,
		Unit:         req.Unidad,
		Price:        req.Precio,
		DurationDays: req.Duracion,
	}
	if req.FechaCompra != "" {
		purchased, err := parsePurchaseDate(req.FechaCompra)
		if err != nil {
			badRequest(w, "Fecha de compra inválida")
			return
		}
		item.PurchasedAt = purchased
	}

	created, err := s.pantry.Create(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.toPantryResponse(created))
}

func (s *Server) handleUpdatePantry(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	itemID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	var req pantryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos")
		return
	}

	updated, err := s.pantry.SetFinished(r.Context(), id.UserID, itemID, req.Terminado)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toPantryResponse(updated))
}

func (s *Server) handleDeletePantry(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	itemID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	if err := s.pantry.Delete(r.Context(), id.UserID, itemID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Producto eliminado", "id": itemID})
}
