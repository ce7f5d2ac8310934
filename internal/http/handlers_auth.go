package http

import (
	"net/http"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "member signed in",
		log.FieldUserID, session.User.ID,
		log.FieldRole, string(session.User.Role))

	writeJSON(w, http.StatusOK, loginResponse{
		Token: session.Token,
		User:  toUserResponse(session.User),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Logout is deliberately lenient: a missing or garbage token still
	// yields a success so clients can always clear their session.
	if token := bearerToken(r); token != "" {
		s.auth.SignOut(token)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(requestUser(r)))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.auth.ChangePassword(r.Context(), requestToken(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "password changed",
		log.FieldUserID, requestUser(r).ID)

	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.UpdateDisplayName(r.Context(), requestToken(r), req.DisplayName)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
