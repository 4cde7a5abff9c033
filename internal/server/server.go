package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Event names exchanged over the websocket.
const (
	EventGenerateReport  = "generate-report"
	EventReportGenerated = "report-generated"
	EventError           = "error"
)

const writeTimeout = 10 * time.Second

//go:embed static/index.html
var indexHTML []byte

// Event is the JSON envelope of every websocket message.
type Event struct {
	Event string `json:"event"`
	Data  string `json:"data,omitempty"`
}

// Reporter produces a report. It never fails; degraded results are returned as text.
type Reporter interface {
	Run(ctx context.Context) string
}

// Server pushes status reports to websocket clients on request.
type Server struct {
	reporter Reporter
	upgrader websocket.Upgrader
}

// New creates a websocket trigger server around reporter.
func New(reporter Reporter) *Server {
	return &Server{
		reporter: reporter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// Handler returns the HTTP routes: the index page, the websocket endpoint,
// Prometheus metrics and a health probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("A user connected")
	defer logger.Info().Msg("User disconnected")

	ctx := r.Context()
	for {
		var in Event
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Websocket read ended")
			}
			return
		}

		out := s.dispatch(ctx, in)

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(out); err != nil {
			logger.Warn().Err(err).Msg("Failed to write websocket event")
			return
		}
	}
}

// dispatch answers a single inbound event. Requests on one connection are served
// one at a time.
func (s *Server) dispatch(ctx context.Context, in Event) (out Event) {
	if in.Event != EventGenerateReport {
		return Event{Event: EventError, Data: fmt.Sprintf("unknown event %q", in.Event)}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Report generation panicked")
			out = Event{Event: EventError, Data: fmt.Sprintf("report generation failed: %v", r)}
		}
	}()

	return Event{Event: EventReportGenerated, Data: s.reporter.Run(ctx)}
}
