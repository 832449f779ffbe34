package http

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/crm/api/auth" // Swagger docs
	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/metrics"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// RateLimits holds the three profiles routes pick from.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the httpx profiles, which already include any
// RATELIMIT_* environment overrides.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Options are the knobs the app layer passes through from configuration.
type Options struct {
	AllowedOrigins []string
	Edge           httpx.EdgeConfig
	Cookies        CookieOptions
	RateLimits     RateLimits
	// TrustedProxies may set X-Forwarded-For. Empty keys limits on the peer address.
	TrustedProxies []netip.Prefix
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	opts         Options
	clientIP     httpx.KeyExtractor
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *metrics.Metrics

	Sessions    *service.SessionService
	Accounts    *service.AccountService
	Invitations *service.InvitationService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) *Router {
	if opts.RateLimits == (RateLimits{}) {
		opts.RateLimits = DefaultRateLimits()
	}
	if opts.Cookies.TTL <= 0 {
		opts.Cookies.TTL = jwtx.DefaultSessionTTL
	}

	return &Router{
		Mux:          http.NewServeMux(),
		opts:         opts,
		clientIP:     httpx.ClientIPKeyExtractor(opts.TrustedProxies),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}
}

// ApplyRoutes registers every route and builds the global chain. Services
// must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvitations()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("/", NotFoundHandler())

	// First listed runs outermost.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.CORS(r.opts.AllowedOrigins),
		httpx.EdgeGate(r.Sessions, r.opts.Edge),
	}
	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CRM Authentication API
//	@version		0.1.0
//	@description	Company registration, login, invitations and role-gated routes for the CRM.
//	@description
//	@description				Session tokens are HS256 JWTs valid for one hour.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/crm
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// handle registers h under pattern with request metrics labelled by pattern.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.metrics.Instrument(pattern, httpx.Chain(h, mws...)))
}

func (r *Router) registerAuth() {
	h := &AccountHandler{Accounts: r.Accounts, Cookies: r.opts.Cookies}

	// Credential endpoints - strict rate limit by IP
	r.handle("POST /register", http.HandlerFunc(h.HandleRegister),
		httpx.RateLimitByIP(r.opts.RateLimits.Strict, r.clientIP),
	)
	r.handle("POST /login", http.HandlerFunc(h.HandleLogin),
		httpx.RateLimitByIP(r.opts.RateLimits.Strict, r.clientIP),
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{
		Invitations: r.Invitations,
		Sessions:    r.Sessions,
		Cookies:     r.opts.Cookies,
	}

	// POST /invite - admins only, limited per user
	r.handle("POST /invite", http.HandlerFunc(h.HandleInvite),
		httpx.Authenticate(r.Sessions),
		httpx.AuthorizeRoles(domain.RoleAdmin.String()),
		httpx.RateLimitByUser(r.opts.RateLimits.Moderate, r.clientIP),
	)

	// POST /accept-invite - public signup, strict by IP
	r.handle("POST /accept-invite", http.HandlerFunc(h.HandleAcceptInvite),
		httpx.RateLimitByIP(r.opts.RateLimits.Strict, r.clientIP),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{Sessions: r.Sessions, Cookies: r.opts.Cookies}
	authn := httpx.Authenticate(r.Sessions)

	r.handle("POST /verify-token", http.HandlerFunc(h.HandleVerifyToken),
		httpx.RateLimitByIP(r.opts.RateLimits.Moderate, r.clientIP),
	)
	r.handle("POST /logout", http.HandlerFunc(h.HandleLogout), authn)
	r.handle("GET /dashboard", http.HandlerFunc(h.HandleDashboard))

	r.handle("GET /protected", MessageHandler(msgProtectedGranted), authn)
	r.handle("GET /admin", MessageHandler(msgAdminGranted),
		authn,
		httpx.AuthorizeRoles(domain.RoleAdmin.String()),
	)
	r.handle("GET /manager", MessageHandler(msgManagerGranted),
		authn,
		httpx.AuthorizeRoles(domain.RoleManager.String(), domain.RoleAdmin.String()),
	)
}

func (r *Router) registerSystem() {
	r.handle("GET /{$}", MessageHandler(msgAPIRunning))

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(r.opts.RateLimits.Lenient, r.clientIP),
	)

	var denylist Pinger
	if r.Sessions.Denylist != nil {
		denylist = r.Sessions.Denylist
	}
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, denylist),
		httpx.RateLimitByIP(r.opts.RateLimits.Lenient, r.clientIP),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
