package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
)

type reminderRequest struct {
	Tipo              string `json:"tipo"`
	Titulo            string `json:"titulo"`
	Descripcion       string `json:"descripcion"`
	FechaRecordatorio string `json:"fecha_recordatorio"`
	Repetir           bool   `json:"repetir"`
}

type reminderCompleteRequest struct {
	Completado bool `json:"completado"`
}

type reminderResponse struct {
	ID                int64     `json:"id"`
	Tipo              string    `json:"tipo"`
	Titulo            string    `json:"titulo"`
	Descripcion       string    `json:"descripcion"`
	FechaRecordatorio time.Time `json:"fecha_recordatorio"`
	Repetir           bool      `json:"repetir"`
	Completado        bool      `json:"completado"`
	FechaCreacion     time.Time `json:"fecha_creacion"`
}

func toReminderResponse(rem core.Reminder) reminderResponse {
	return reminderResponse{
		ID:                rem.ID,
		Tipo:              rem.Kind,
		Titulo:            rem.Title,
		Descripcion:       rem.Description,
		FechaRecordatorio: rem.DueAt,
		Repetir:           rem.Repeat,
		Completado:        rem.Completed,
		FechaCreacion:     rem.CreatedAt,
	}
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	reminders, err := s.reminders.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, toReminderResponse(rem))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos obligatorios")
		return
	}

	var dueAt time.Time
	if req.FechaRecordatorio != "" {
		parsed, err := parsePurchaseDate(req.FechaRecordatorio)
		if err != nil {
			badRequest(w, "Fecha de recordatorio inválida")
			return
		}
		dueAt = parsed
	}

	created, err := s.reminders.Create(r.Context(), core.Reminder{
		UserID:      id.UserID,
		Kind:        req.Tipo,
		Title:       req.Titulo,
		Description: req.Descripcion,
		DueAt:       dueAt,
		Repeat:      req.Repetir,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(created))
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	reminderID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	var req reminderCompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Faltan datos")
		return
	}

	updated, err := s.reminders.SetCompleted(r.Context(), id.UserID, reminderID, req.Completado)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(updated))
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, _ := identity(r)

	reminderID, err := pathID(r)
	if err != nil {
		badRequest(w, "Identificador inválido")
		return
	}

	if err := s.reminders.Delete(r.Context(), id.UserID, reminderID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Recordatorio eliminado", "id": reminderID})
}
