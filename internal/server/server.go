package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"routine-advisor/internal/catalog"
	"routine-advisor/internal/config"
	"routine-advisor/internal/prompts"
	"routine-advisor/internal/types"
	"routine-advisor/internal/websearch"
)

const searchTimeout = 10 * time.Second

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	prompts  prompts.Prompts
	upstream *http.Client
	search   *websearch.Client
	products []catalog.Product
	log      logrus.FieldLogger
}

func NewServer(cfg config.Config, log logrus.FieldLogger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}

	// The catalog endpoint is a convenience for clients; the relay works without it.
	products, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.CatalogPath).Warn("catalog not loaded, /api/products disabled")
		products = nil
	}

	r := chi.NewRouter()
	s := &Server{
		router:   r,
		cfg:      cfg,
		prompts:  p,
		upstream: newUpstreamClient(cfg),
		search: &websearch.Client{
			APIKey:     cfg.BraveAPIKey,
			BaseURL:    cfg.BraveSearchURL,
			HTTPClient: &http.Client{Timeout: searchTimeout},
		},
		products: products,
		log:      log,
	}

	r.Use(middleware.RealIP)
	r.Use(s.logHandler)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
		// The relay answers preflight itself with 204.
		OptionsPassthrough: true,
	}))

	s.routes()
	return s, nil
}

// newUpstreamClient returns a client that attaches the server-held key as a
// bearer token on every upstream call.
func newUpstreamClient(cfg config.Config) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OpenAIAPIKey, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.Background(), ts)
	if cfg.UpstreamTimeout > 0 {
		hc.Timeout = time.Duration(cfg.UpstreamTimeout) * time.Second
	}
	return hc
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/products", s.handleProducts)

	var relay http.Handler = http.HandlerFunc(s.handleRelay)
	if s.cfg.RateLimitPerMinute > 0 {
		relay = NewRateLimiter(s.cfg.RateLimitPerMinute, time.Minute).Middleware(relay)
	}
	s.router.Handle("/", relay)
	s.router.Handle("/api/chat", relay)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if s.products == nil {
		s.writeError(w, http.StatusServiceUnavailable, catalog.LoadFailedMessage)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]catalog.Product{"products": s.products})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}
