package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkup-social/linkup/internal/common"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// respondError maps domain failures to caller-facing 4xx responses with a
// human-readable reason. Anything unrecognized is an infrastructure failure:
// it has already been logged with detail at the point of occurrence and is
// masked here as an opaque 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		s.writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, common.ErrNotFound):
		s.writeMessage(w, http.StatusBadRequest, "User not found")
	case errors.Is(err, common.ErrInvalidCredentials):
		s.writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidOTP):
		s.writeMessage(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, common.ErrOTPExpired):
		s.writeMessage(w, http.StatusBadRequest, "OTP expired")
	case errors.Is(err, common.ErrOTPInvalidOrExpired):
		s.writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody parses a JSON request body. A malformed body is a client error.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
