package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/auth"
	"github.com/propsnap/propsnap/internal/metrics"
	"github.com/propsnap/propsnap/internal/service"
)

// Config holds router settings.
type Config struct {
	CORSOrigins []string
	// AuthRateLimit is requests per IP per minute on /user/auth. Zero disables it.
	AuthRateLimit int
	// UploadDir is served read-only at /uploads/. Empty disables it.
	UploadDir string
	MaxImages int
	// MaxUploadBytes bounds a whole multipart request.
	MaxUploadBytes int64
}

type Handler struct {
	svc     *service.Services
	db      *gorm.DB
	auth    *auth.Middleware
	metrics *metrics.Metrics
	cfg     Config
}

func NewHandler(svc *service.Services, db *gorm.DB, jwt *auth.JWTManager, m *metrics.Metrics, cfg Config) *Handler {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = int64(cfg.MaxImages+1) * (10 << 20)
	}
	return &Handler{
		svc:     svc,
		db:      db,
		auth:    auth.NewMiddleware(jwt, respondError),
		metrics: m,
		cfg:     cfg,
	}
}

// Routes builds the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(h.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, &Response{
			Error: &ErrorBody{Code: "NOT_FOUND", Message: "route not found"},
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, &Response{
			Error: &ErrorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
		})
	})

	r.Get("/ping", h.ping)
	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	if h.cfg.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.cfg.UploadDir)))
		r.Handle("/uploads/*", noDirListing(fs))
	}

	r.Route("/user", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if h.cfg.AuthRateLimit > 0 {
				r.Use(httprate.LimitByIP(h.cfg.AuthRateLimit, time.Minute))
			}
			r.Post("/register", h.registerUser)
			r.Post("/login", h.login)
		})
		r.With(h.auth.Require).Get("/me", h.me)
	})

	r.Route("/property", func(r chi.Router) {
		r.With(h.auth.Optional).Get("/properties", h.getProperties)
		r.Get("/get-cities", h.getCities)
		r.Get("/message", h.listEnquiries)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Require)
			r.Post("/register_property", h.registerProperty)
			r.Put("/update_Property/{id}", h.updateProperty)
			r.Delete("/delete_Property/{id}", h.deleteProperty)
			r.Get("/my_properties", h.myProperties)
			r.Get("/favourites", h.listFavourites)
			r.Post("/add_fav", h.addFavourite)
			r.Delete("/del_fav", h.removeFavourite)
			r.Post("/message", h.createEnquiry)
			r.Post("/reply_message", h.replyEnquiry)
		})
	})

	r.Route("/chat", func(r chi.Router) {
		r.Use(h.auth.Require)
		r.Post("/create", h.openConversation)
		r.Get("/chats", h.listConversations)
		r.Post("/send", h.sendMessage)
		r.Get("/fetch", h.fetchMessages)
	})

	return r
}

// principalID returns the caller's id. Routes behind Require always have one.
func principalID(r *http.Request) string {
	p, _ := auth.PrincipalFrom(r.Context())
	return p.ID
}
