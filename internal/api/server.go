// Package api exposes the medication helper over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/interfaces"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

const maxBodyBytes = 10 << 20

// Dependencies holds the services the API serves.
type Dependencies struct {
	Medications interfaces.MedicationServiceInterface
	Doses       interfaces.DoseServiceInterface
	Checks      interfaces.CheckServiceInterface
	Narrator    interfaces.NarratorInterface // nil disables /api/speak
	Now         services.Clock
}

// Server is the HTTP server for the medication API.
type Server struct {
	deps           Dependencies
	allowedOrigins []string
	errors         *apperrors.Handler

	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

func NewServer(deps Dependencies, allowedOrigins []string) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{
		deps:           deps,
		allowedOrigins: allowedOrigins,
		errors:         apperrors.NewHandler(logger.GetLogger()),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors(s.allowedOrigins))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/check", s.handleCheck)

		r.Route("/medications", func(r chi.Router) {
			r.Get("/", s.handleListMedications)
			r.Post("/", s.handleCreateMedication)
			r.Get("/{id}", s.handleGetMedication)
			r.Put("/{id}", s.handleUpdateMedication)
			r.Delete("/{id}", s.handleDeleteMedication)
		})

		r.Post("/prescriptions/scan", s.handleScanPrescription)

		r.Route("/doses", func(r chi.Router) {
			r.Get("/", s.handleTodayLog)
			r.Post("/", s.handleRecordDose)
			r.Delete("/{id}", s.handleDeleteDose)
		})

		r.Post("/speak", s.handleSpeak)
	})

	return r
}

// Start listens on addr and blocks until the server stops. It returns
// immediately if Stop already ran.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	logger.Info("Starting HTTP server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.server
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
