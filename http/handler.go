package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sagarc03/bluelist"
)

// Signer issues upload policies for the configured bucket.
type Signer interface {
	Sign(fileName string) (bluelist.SignedPolicy, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// ContextRoot prefixes every gateway route, e.g. "/v1/apps/bluelist".
	ContextRoot string
	// StaticDir is served under {ContextRoot}/public. Empty disables it.
	StaticDir string
	// BackendTimeout bounds each request's wait on the backend. Zero disables it.
	BackendTimeout time.Duration
	// MaxBodySize caps request bodies in bytes. Zero disables it.
	MaxBodySize int64
	CORS        CORSConfig
	Logger      *slog.Logger
}

// Handler provides the gateway's HTTP surface.
type Handler struct {
	config   HandlerConfig
	store    bluelist.DocumentStore
	signer   Signer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler. A nil signer leaves the signing route
// unregistered.
func NewHandler(config *HandlerConfig, store bluelist.DocumentStore, signer Signer) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		config:   *config,
		store:    store,
		signer:   signer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ContextRoot returns the normalized route prefix ("" for the server root).
func (h *Handler) ContextRoot() string {
	root := strings.TrimRight(h.config.ContextRoot, "/")
	if root != "" && !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return root
}

// Router returns an http.Handler with every gateway route mounted under the
// context root. GET / redirects to the static assets.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLog(h.logger))
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeDefaultNotFound)

	root := h.ContextRoot()
	if root == "" {
		h.routes(r)
		return r
	}

	r.Get("/", h.handleRootRedirect)
	r.Route(root, h.routes)
	return r
}

func (h *Handler) routes(r chi.Router) {
	if h.ContextRoot() == "" {
		r.Get("/", h.handleRootRedirect)
	}

	r.Get("/healthz", h.handleHealth)

	if h.config.StaticDir != "" {
		prefix := h.ContextRoot() + "/public"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(h.config.StaticDir)))
		r.Get("/public", http.RedirectHandler(prefix+"/", http.StatusMovedPermanently).ServeHTTP)
		r.Get("/public/*", files.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(MaxBodySize(h.config.MaxBodySize))

		if h.signer != nil {
			r.Post("/signing", h.handleSigning)
		}

		r.Group(func(r chi.Router) {
			r.Use(BackendMiddleware(h.store, h.config.BackendTimeout))
			r.Get("/items", h.handleListItems)
			r.Get("/item/{id}", h.handleGetItem)
			r.Post("/item", h.handleCreateItem)
			r.Put("/item/{id}", h.handleUpdateItem)
			r.Delete("/item/{id}", h.handleDeleteItem)
		})
	})
}

func (h *Handler) handleRootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.ContextRoot()+"/public", http.StatusFound)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Backend unreachable")
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
