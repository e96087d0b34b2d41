package http

import (
	"net/http"
	"time"
)

type registerRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type profileResponse struct {
	ID            int64     `json:"id"`
	Nombre        string    `json:"nombre"`
	Email         string    `json:"email"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Todos los campos son requeridos")
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Nombre, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Usuario creado exitosamente",
		"userId":  user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Email y contraseña son requeridos")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(w, "Email y contraseña son requeridos")
		return
	}

	token, user, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": userResponse{
			ID:     user.ID,
			Nombre: user.Name,
			Email:  user.Email,
		},
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("token de acceso requerido"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": map[string]any{
			"userId": id.UserID,
			"email":  id.Email,
		},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("token de acceso requerido"))
		return
	}

	user, err := s.accounts.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:            user.ID,
		Nombre:        user.Name,
		Email:         user.Email,
		FechaRegistro: user.CreatedAt,
	})
}
