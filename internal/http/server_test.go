package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/auth"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tokens := auth.NewTokenManager("test-secret-at-least-16-chars", time.Hour)
	ledger := services.NewLedgerService(repo, nil)

	s := NewServer(Deps{
		Accounts:  services.NewAccountService(repo, tokens, 4),
		Ledger:    ledger,
		Pantry:    services.NewPantryService(repo, ledger),
		Reminders: services.NewReminderService(repo),
		Budgets:   services.NewBudgetService(repo),
		Goals:     services.NewGoalService(repo, ledger),
		Tokens:    tokens,
		Storage:   repo,
	})
	t.Cleanup(s.Close)
	return s
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, s *Server, email string) string {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"nombre": "Ana", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("register", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
			"nombre": "Ana", "email": "ana@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message string `json:"message"`
			UserID  int64  `json:"userId"`
		}
		decodeBody(t, rec, &resp)
		assert.NotZero(t, resp.UserID)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
			"nombre": "Otra", "email": "ana@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ya está registrado")
	})

	t.Run("short password", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
			"nombre": "Luis", "email": "luis@example.com", "password": "12345",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login and verify", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "ana@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Nombre string `json:"nombre"`
				Email  string `json:"email"`
			} `json:"user"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Ana", resp.User.Nombre)

		rec = doRequest(t, s, http.MethodGet, "/api/auth/verify", resp.Token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"valid":true`)
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "ana@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Credenciales inválidas")
	})

	t.Run("missing token is 401", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/gastos/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is 403", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/gastos/", "not-a-token", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestEntryEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "entries@example.com")
	otherToken := registerAndLogin(t, s, "intruder@example.com")

	var created struct {
		ID        int64   `json:"id"`
		Concepto  string  `json:"concepto"`
		Categoria string  `json:"categoria"`
		Semanal   float64 `json:"semanal"`
		Mensual   float64 `json:"mensual"`
	}

	t.Run("create derives monthly", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/gastos/", token, map[string]any{
			"concepto": "Transporte", "semanal": 100,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decodeBody(t, rec, &created)
		assert.Equal(t, 100.0, created.Semanal)
		assert.Equal(t, 400.0, created.Mensual)
		assert.Equal(t, "otros", created.Categoria)
	})

	t.Run("list newest first", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/gastos/", token, map[string]any{
			"concepto": "Luz", "mensual": 40,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, s, http.MethodGet, "/api/gastos/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []struct {
			Concepto string `json:"concepto"`
		}
		decodeBody(t, rec, &list)
		require.Len(t, list, 2)
		assert.Equal(t, "Luz", list[0].Concepto)
	})

	t.Run("update category returns record", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/gastos/%d/categoria", created.ID), token, map[string]any{
			"categoria": "transporte",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated struct {
			Categoria string  `json:"categoria"`
			Semanal   float64 `json:"semanal"`
		}
		decodeBody(t, rec, &updated)
		assert.Equal(t, "transporte", updated.Categoria)
		assert.Equal(t, 100.0, updated.Semanal)
	})

	t.Run("foreign id is not found", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/gastos/%d/categoria", created.ID), otherToken, map[string]any{
			"categoria": "robo",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/gastos/%d", created.ID), otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// The owner still sees the untouched record.
		rec = doRequest(t, s, http.MethodGet, "/api/gastos/", token, nil)
		var list []struct {
			Categoria string `json:"categoria"`
		}
		decodeBody(t, rec, &list)
		require.Len(t, list, 2)
	})

	t.Run("delete returns id", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/gastos/%d", created.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Gasto eliminado")
	})

	t.Run("missing amounts", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/ingresos/", token, map[string]any{
			"concepto": "Sueldo",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPantryEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "pantry@example.com")

	var created struct {
		ID            int64   `json:"id"`
		Unidad        string  `json:"unidad"`
		DiasRestantes int     `json:"dias_restantes"`
		Precio        float64 `json:"precio"`
	}

	t.Run("create with price records companion expense", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/despensa/", token, map[string]any{
			"nombre": "Aceite", "cantidad": 1, "precio": 20, "duracion": 30,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decodeBody(t, rec, &created)
		assert.Equal(t, "unidades", created.Unidad)
		assert.Equal(t, 30, created.DiasRestantes)

		rec = doRequest(t, s, http.MethodGet, "/api/gastos/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var expenses []struct {
			Concepto  string  `json:"concepto"`
			Categoria string  `json:"categoria"`
			Semanal   float64 `json:"semanal"`
			Mensual   float64 `json:"mensual"`
		}
		decodeBody(t, rec, &expenses)
		require.Len(t, expenses, 1)
		assert.Equal(t, "Compra despensa: Aceite", expenses[0].Concepto)
		assert.Equal(t, "Despensa", expenses[0].Categoria)
		assert.Equal(t, 5.0, expenses[0].Semanal)
		assert.Equal(t, 20.0, expenses[0].Mensual)
	})

	t.Run("finish toggle", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/despensa/%d", created.ID), token, map[string]any{
			"terminado": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated struct {
			Terminado      bool    `json:"terminado"`
			FechaTerminado *string `json:"fecha_terminado"`
		}
		decodeBody(t, rec, &updated)
		assert.True(t, updated.Terminado)
		assert.NotNil(t, updated.FechaTerminado)

		rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/despensa/%d", created.ID), token, map[string]any{
			"terminado": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		decodeBody(t, rec, &updated)
		assert.False(t, updated.Terminado)
		assert.Nil(t, updated.FechaTerminado)
	})

	t.Run("missing required fields", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/despensa/", token, map[string]any{
			"nombre": "Sal",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/despensa/%d", created.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Producto eliminado")
	})
}

func TestReminderEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "reminders@example.com")

	rec := doRequest(t, s, http.MethodPost, "/api/recordatorios/", token, map[string]any{
		"tipo": "pago", "titulo": "Pagar alquiler", "fecha_recordatorio": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/recordatorios/%d/completado", created.ID), token, map[string]any{
		"completado": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completado":true`)

	rec = doRequest(t, s, http.MethodPost, "/api/recordatorios/", token, map[string]any{
		"tipo": "pago", "titulo": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "budgets@example.com")

	rec := doRequest(t, s, http.MethodPost, "/api/gastos/", token, map[string]any{
		"concepto": "Supermercado", "categoria": "comida", "mensual": 950,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/presupuestos/", token, map[string]any{
		"categoria": "comida", "limite_mensual": 1000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/api/presupuestos/alertas", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []struct {
		Categoria  string `json:"categoria"`
		Porcentaje int    `json:"porcentaje"`
		Nivel      string `json:"nivel"`
	}
	decodeBody(t, rec, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "comida", alerts[0].Categoria)
	assert.Equal(t, 95, alerts[0].Porcentaje)
	assert.Equal(t, "critical", alerts[0].Nivel)
}

func TestGoalEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "goals@example.com")

	rec := doRequest(t, s, http.MethodPost, "/api/ingresos/", token, map[string]any{
		"concepto": "Sueldo", "mensual": 1500,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, s, http.MethodPost, "/api/gastos/", token, map[string]any{
		"concepto": "Alquiler", "mensual": 1000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/metas/", token, map[string]any{
		"nombre": "Vacaciones", "monto_objetivo": 2000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var goal struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &goal)

	t.Run("assign within available savings", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/metas/%d/ahorro", goal.ID), token, map[string]any{
			"monto": 300,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated struct {
			MontoActual float64 `json:"monto_actual"`
		}
		decodeBody(t, rec, &updated)
		assert.Equal(t, 300.0, updated.MontoActual)
	})

	t.Run("assign beyond available savings", func(t *testing.T) {
		// 500 of savings, 300 already committed.
		rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/metas/%d/ahorro", goal.ID), token, map[string]any{
			"monto": 201,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/metas/%d", goal.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Meta eliminada")
	})
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
