package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"compras/internal/cache"
	"compras/internal/log"
	"compras/internal/middleware/ratelimit"
	"compras/internal/middleware/security"
	"compras/internal/middleware/trace"
	"compras/internal/services"
	appweb "compras/web"
)

const (
	defaultUploadMaxBytes = 10 << 20
	staticMaxAge          = 3600
)

// Pinger reports backing store health for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the optional collaborators of the server.
type Deps struct {
	Store          Pinger
	CacheStats     func() cache.Stats
	UploadMaxBytes int64
	RateLimit      ratelimit.Config
	Logger         *log.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	http.Server
	svc       *services.DashboardService
	templates *template.Template
	text      uiText

	store      Pinger
	cacheStats func() cache.Stats
	uploadMax  int64

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. Templates that fail to parse leave the JSON routes working.
func NewServer(addr string, svc *services.DashboardService, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	uploadMax := deps.UploadMaxBytes
	if uploadMax <= 0 {
		uploadMax = defaultUploadMaxBytes
	}
	rlConfig := deps.RateLimit
	if rlConfig.Requests <= 0 {
		rlConfig = ratelimit.DefaultConfig()
	}

	settings := svc.Settings()
	s := &Server{
		svc:        svc,
		text:       textFor(settings.Locale),
		store:      deps.Store,
		cacheStats: deps.CacheStats,
		uploadMax:  uploadMax,
		detector:   security.NewDetector(),
		limiter:    ratelimit.NewLimiter(rlConfig),
		logger:     logger,
		started:    time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger.WithComponent(log.ComponentTrace))

	t, err := template.New("").Funcs(templateFuncs(settings.Currency)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(middleware.Compress(5))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/ui/dashboard", s.handleDashboardPartial)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleAPIDataset)
		r.Get("/options", s.handleAPIOptions)
		r.Get("/summary", s.handleAPISummary)
		r.Get("/charts", s.handleAPICharts)
		r.Get("/charts/{kind}", s.handleAPIChart)
		r.Get("/insights", s.handleAPIInsights)
		r.Get("/purchases", s.handleAPIPurchases)
	})

	r.Get("/export.csv", s.handleExportCSV)
	r.Get("/export.xlsx", s.handleExportXLSX)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))
		r.Post("/upload", s.handleUpload)
		r.Post("/reload", s.handleReload)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)
	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerWarningNotification(s.text.RateLimited).
			Write(w)
		return
	}
	http.Error(w, s.text.RateLimited, http.StatusTooManyRequests)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
