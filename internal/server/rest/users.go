package rest

import (
	"net/http"

	"github.com/dmitrijs2005/capacitanet/internal/server/services"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.users.Register(r.Context(), in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusOK, "registration successful")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in services.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}

	token, err := h.users.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in services.ChangePasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), p, in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusOK, "password updated")
}

func (h *handler) deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in services.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.users.Deactivate(r.Context(), p, in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusOK, "user deactivated")
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.users.Profile(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
