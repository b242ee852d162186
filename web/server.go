// ABOUTME: HTTP JSON API for the pipeline tracker
// ABOUTME: Serves partners, pipeline views, initiatives, notes, backups and spreadsheet exports
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/viz"
	"golang.org/x/sync/errgroup"
)

// maxUploadBytes caps multipart spreadsheet and backup uploads.
const maxUploadBytes = 32 << 20

type Server struct {
	tr        *tracker.Tracker
	addr      string
	generator *viz.GraphGenerator
}

func NewServer(tr *tracker.Tracker, addr string) *Server {
	return &Server{
		tr:        tr,
		addr:      addr,
		generator: viz.NewGraphGenerator(tr),
	}
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger,
		middleware.Recoverer,
	)

	r.Get("/", s.handleDashboard)
	r.Get("/graph", s.handleGraph)

	r.Route("/api", func(r chi.Router) {
		r.Route("/partners", func(r chi.Router) {
			r.Get("/", s.listPartners)
			r.Post("/", s.addPartner)
			r.Patch("/{id}", s.updatePartner)
			r.Delete("/{id}", s.deletePartner)
		})

		r.Route("/pipeline", func(r chi.Router) {
			r.Get("/", s.pipelineState)
			r.Post("/", s.uploadPipeline)
			r.Delete("/", s.clearPipeline)
			r.Get("/groups", s.pipelineGroups)
			r.Get("/window", s.pipelineWindow)
			r.Get("/stats", s.pipelineStats)
		})

		r.Get("/opportunities/{id}/notes", s.opportunityNotes)
		r.Post("/opportunities/{id}/notes", s.addOpportunityNote)

		r.Route("/initiatives", func(r chi.Router) {
			r.Get("/", s.listInitiatives)
			r.Post("/", s.addInitiative)
			r.Patch("/{id}", s.updateInitiative)
			r.Delete("/{id}", s.deleteInitiative)
			r.Get("/{id}/notes", s.initiativeNotes)
			r.Post("/{id}/notes", s.addInitiativeNote)
		})

		r.Patch("/notes/{id}", s.updateNote)
		r.Delete("/notes/{id}", s.deleteNote)
		r.Get("/actions", s.actionItems)

		r.Route("/backup", func(r chi.Router) {
			r.Get("/", s.exportBackup)
			r.Post("/", s.importBackup)
			r.Post("/rollback", s.rollback)
			r.Delete("/", s.clearAll)
		})
	})

	r.Get("/export/opportunities.xlsx", s.exportOpportunities)
	r.Get("/export/initiatives.xlsx", s.exportInitiatives)

	return r
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		log.Info("starting web server", "addr", "http://"+s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		log.Debug("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
