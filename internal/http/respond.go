package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"finanzas/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// validationMessages maps the 400-class sentinels from the domain layer to
// the Spanish messages the API speaks.
var validationMessages = []struct {
	err     error
	message string
}{
	{core.ErrInvalidAmount, "Cantidad inválida"},
	{core.ErrEmptyConcept, "El concepto es requerido"},
	{core.ErrMissingAmounts, "Se requiere el importe semanal o mensual"},
	{core.ErrEmptyName, "El nombre es requerido"},
	{core.ErrInvalidQuantity, "La cantidad debe ser mayor que cero"},
	{core.ErrInvalidDuration, "La duración debe ser mayor que cero"},
	{core.ErrEmptyKind, "El tipo es requerido"},
	{core.ErrEmptyTitle, "El título es requerido"},
	{core.ErrMissingDueDate, "La fecha del recordatorio es requerida"},
	{core.ErrEmptyCategory, "La categoría es requerida"},
	{core.ErrInvalidEmail, "Email inválido"},
	{core.ErrPasswordTooShort, "La contraseña debe tener al menos 6 caracteres"},
	{core.ErrInsufficientFunds, "El monto excede el ahorro disponible"},
}

// writeError translates the domain error taxonomy into a status code and a
// JSON error body. Unknown errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("No encontrado"))
	case errors.Is(err, core.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, errorBody("El correo electrónico ya está registrado"))
	case errors.Is(err, core.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, errorBody("Credenciales inválidas"))
	default:
		for _, v := range validationMessages {
			if errors.Is(err, v.err) {
				writeJSON(w, http.StatusBadRequest, errorBody(v.message))
				return
			}
		}
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Error del servidor"))
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// decodeJSON reads a request body into dst, rejecting malformed payloads.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody(message))
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// clientIP extracts the caller's address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
