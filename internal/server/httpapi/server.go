// Package httpapi exposes the public HTTP surface of the Linkup server:
// registration, OTP verification, login, password recovery, profile reads,
// the contact form, and media upload negotiation.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/linkup-social/linkup/internal/logging"
	"github.com/linkup-social/linkup/internal/server/auth"
	"github.com/linkup-social/linkup/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
	contact *services.ContactService
	media   *services.MediaService
	issuer  *auth.TokenIssuer
}

func NewServer(address string, logger logging.Logger, as *services.AuthService,
	cs *services.ContactService, ms *services.MediaService, issuer *auth.TokenIssuer) *Server {
	return &Server{
		address: address,
		logger:  logger.With("module", "http_server"),
		auth:    as,
		contact: cs,
		media:   ms,
		issuer:  issuer,
	}
}

// Router assembles the route table. Credential and recovery endpoints are
// public; profile and media endpoints require a bearer session token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
		r.Post("/contact", s.handleContact)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/user", s.handleUser)
			r.Get("/profile", s.handleProfile)
			r.Post("/uploads/photo", s.handleUploadPhoto)
			r.Post("/uploads/video", s.handleUploadVideo)
			r.Get("/uploads/photos", s.handleListPhotos)
			r.Get("/videos", s.handleListVideos)
		})
	})

	return r
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
