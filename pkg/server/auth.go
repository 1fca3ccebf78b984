package server

import (
	"encoding/json"
	"net/http"

	"github.com/vipul69-eng/leadbook/pkg/auth"
)

func (s *Server) signup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	var creds auth.Credentials
	if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
		respondError(http.StatusBadRequest, w, "could not parse request body")
		return
	}

	token, err := s.authSvc.Signup(req.Context(), creds)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSessionCookie(w, token)
	RespondWithJSON(http.StatusCreated, w, token)
}

func (s *Server) login(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	var creds auth.Credentials
	if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
		respondError(http.StatusBadRequest, w, "could not parse request body")
		return
	}

	token, err := s.authSvc.Login(req.Context(), creds)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	setSessionCookie(w, token)
	RespondWithJSON(http.StatusOK, w, token)
}

func (s *Server) me(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	session := sessionFromContext(req.Context())
	RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"id":       session.Sub,
		"username": session.Username,
		"role":     session.Role,
	})
}

func setSessionCookie(w http.ResponseWriter, token *auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
