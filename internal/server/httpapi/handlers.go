package httpapi

import (
	"errors"
	"net/http"

	"github.com/linkup-social/linkup/internal/common"
	"github.com/linkup-social/linkup/internal/server/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "User registered successfully. Please verify your OTP.")
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	token, err := s.auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "OTP sent to email")
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Password reset successfully")
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.contact.Relay(r.Context(), req.Name, req.Email, req.Message); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Emails sent successfully!")
}

// handleUser returns the display name of the authenticated account.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		s.writeMessage(w, http.StatusUnauthorized, "Missing token")
		return
	}

	profile, err := s.auth.GetProfile(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"name": profile.Name})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		s.writeMessage(w, http.StatusUnauthorized, "Missing token")
		return
	}

	profile, err := s.auth.GetProfile(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.MediaKindPhoto)
}

func (s *Server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.MediaKindVideo)
}

// handleUpload negotiates a direct-to-storage upload: the client receives a
// presigned PUT URL and sends the bytes there itself.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, kind string) {
	key, url, err := s.media.PresignUpload(r.Context(), kind)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"key": key, "uploadUrl": url})
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	objects, err := s.media.List(r.Context(), services.MediaKindPhoto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]services.MediaObject{"photos": objects})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	objects, err := s.media.List(r.Context(), services.MediaKindVideo)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]services.MediaObject{"videos": objects})
}
