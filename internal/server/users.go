package server

import (
	"net/http"

	"github.com/harmonia-fm/harmonia/internal/identity"
)

// UserHandler serves account registration, login, and user lookup endpoints.
type UserHandler struct {
	identity *identity.Service
	mux      *http.ServeMux
}

// NewUserHandler creates a UserHandler. Deleting an account requires auth.
func NewUserHandler(svc *identity.Service, auth Middleware) *UserHandler {
	h := &UserHandler{identity: svc, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /api/v1/users", h.register)
	h.mux.HandleFunc("POST /api/v1/sessions", h.login)
	h.mux.HandleFunc("GET /api/v1/users/{id}", h.get)
	h.mux.Handle("DELETE /api/v1/users/{id}", auth(http.HandlerFunc(h.delete)))

	return h
}

func (h *UserHandler) Routes() []string {
	return []string{"/api/v1/users", "/api/v1/users/{id}", "/api/v1/sessions"}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.identity.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, token, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{UserID: userID, Token: token})
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if UserIDFromContext(r.Context()) != id {
		writeErrorMessage(w, http.StatusForbidden, "cannot delete another user's account")
		return
	}

	if err := h.identity.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
