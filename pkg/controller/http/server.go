package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/usecase"
	"github.com/doowon-lab/dwportal/pkg/utils/errutil"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
	"github.com/doowon-lab/dwportal/pkg/utils/safe"
)

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	tracker interfaces.Tracker
}

type Options func(*Server)

func New(uc *usecase.UseCases, tracker interfaces.Tracker, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		uc:      uc,
		tracker: tracker,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Unauthenticated endpoints
	r.Post("/api/auth/login", authLoginHandler(uc.Auth))
	r.Get("/api/debug/ping", pingHandler(tracker))

	// Everything else requires a session
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(uc.Auth))

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/logout", authLogoutHandler(uc.Auth))
			r.Get("/me", authMeHandler())
		})

		// Field configuration
		r.Get("/api/field-configs", fieldConfigsHandler(uc.Config))
		r.Get("/api/field-configs/{section}", sectionConfigHandler(uc.Config))
		r.Post("/api/field-configs", saveFieldConfigsHandler(uc.Config))
		r.Get("/api/tracker-id/{section}", trackerIDHandler(uc.Config))
		r.Get("/api/form-layout/{section}", formLayoutHandler(uc))

		// Section record views
		r.Get("/api/table-view/{section}", tableViewHandler(uc))
		r.Post("/api/reports/{section}", createReportHandler(uc))
		r.Put("/api/reports/{section}/{itemID}", updateReportHandler(uc))
		r.Delete("/api/reports/{section}/{itemID}", deleteReportHandler(uc))

		// Downstream tracker passthrough
		r.Get("/api/codebeamer/projects", listProjectsHandler(tracker))
		r.Get("/api/codebeamer/projects/{projectID}/trackers", listTrackersHandler(tracker))
		r.Get("/api/codebeamer/trackers/{trackerID}/items", listItemsHandler(tracker))
		r.Get("/api/codebeamer/items/{itemID}", getItemHandler(tracker))
		r.Post("/api/v3/trackers/{trackerID}/items", createItemHandler(tracker))
		r.Put("/api/codebeamer/items/{itemID}/fields", updateItemFieldsHandler(tracker))
		r.Delete("/api/codebeamer/items/{itemID}", deleteItemHandler(tracker))
		r.Post("/api/v3/items/{itemID}/attachments", uploadAttachmentsHandler(tracker))
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// writeRaw forwards a downstream JSON document verbatim
func writeRaw(ctx context.Context, w http.ResponseWriter, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(ctx, w, data)
}

func pingHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tracker.Ping(r.Context()); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadGateway)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}
