// Package proxy is the local HTTP bridge between a browser or CLI and the
// Tally Prime XML port, which accepts neither CORS nor remote callers.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/secure"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/transport"
)

// MaxBodyBytes caps the size of a forwarded request.
const MaxBodyBytes = 16 << 20

// Upstream is the Tally side of the proxy.
type Upstream interface {
	Post(ctx context.Context, body string) ([]byte, error)
	Probe(ctx context.Context) ([]tally.Company, error)
}

type Options struct {
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	// AllowedOrigin enables CORS for one UI origin.
	AllowedOrigin string
	Logger        *logrus.Logger
}

type Server struct {
	upstream Upstream
	opts     Options
	metrics  *Metrics
	log      *logrus.Logger
}

func New(upstream Upstream, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = tally.Logger()
	}
	return &Server{
		upstream: upstream,
		opts:     opts,
		metrics:  NewMetrics(),
		log:      log,
	}
}

// Routes builds the router: POST /tally, GET /health and GET /metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
		secureMiddleware.Handler,
		s.metrics.Middleware,
	)
	if s.opts.AllowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{s.opts.AllowedOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimit, time.Minute))
		}
		r.Post("/tally", s.forward)
	})
	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("tally proxy listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.metrics.forwarded("bad-request")
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
		return
	}

	reply, err := s.upstream.Post(r.Context(), string(body))
	if err != nil {
		status, outcome := http.StatusBadGateway, string(transport.ReasonNetwork)
		var terr *transport.Error
		if errors.As(err, &terr) {
			outcome = string(terr.Reason)
			if terr.Reason == transport.ReasonTimeout {
				status = http.StatusGatewayTimeout
			}
		}
		s.metrics.forwarded(outcome)
		tally.LogError("proxy", "forward", outcome, nil, err)
		writeJSON(w, status, errorBody{Error: err.Error(), Reason: outcome})
		return
	}

	s.metrics.forwarded("ok")
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}

type healthBody struct {
	Status    string          `json:"status"`
	Companies []tally.Company `json:"companies,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	companies, err := s.upstream.Probe(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unreachable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Companies: companies})
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start).String(),
			"requestId": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
