package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fetchbot/internal/domain"
	"fetchbot/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type statsResp struct {
	Tasks map[string]int64 `json:"tasks"`
	Queue int64            `json:"queue"`
}

func NewServer(store ports.Store) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		resp := statsResp{Tasks: make(map[string]int64)}
		for _, st := range domain.AllStatuses() {
			n, err := store.CountByStatus(r.Context(), st)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			resp.Tasks[st.String()] = n
		}
		queued, err := store.CountByStatus(r.Context(), domain.StatusPending, domain.StatusDownloading)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		resp.Queue = queued
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return &Server{router: r}
}

type Server struct {
	router *chi.Mux
}

// Run method of the Server struct runs the HTTP server on the specified port.
// It initializes a new HTTP server instance with the specified port and the
// server's router.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	h := chainMiddleware(
		s.router,
		recoverHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/healthz" }),
		requestIDHandler,
	)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
