package api

import (
	"net/http"

	"github.com/propsnap/propsnap/internal/auth"
	"github.com/propsnap/propsnap/internal/service"
)

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	u, err := h.svc.Auth.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, u, "user registered")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	session, err := h.svc.Auth.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, session, "login successful")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	u, err := h.svc.Auth.Me(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, u, "")
}
