package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"blogsupport/internal/config"
	"blogsupport/internal/middleware"
	"blogsupport/internal/service"
	"blogsupport/internal/thumbnail"
	"blogsupport/internal/tracing"
)

// Access decides whether a route can be reached without a session.
type Access int

const (
	// Inherit takes the controller's default.
	Inherit Access = iota
	Public
	Protected
)

type Route struct {
	Method     string
	Path       string
	Access     Access
	Middleware []gin.HandlerFunc
	Handler    gin.HandlerFunc
}

// Controller groups routes under a prefix. Public is the default access for
// routes that do not declare their own.
type Controller struct {
	Name   string
	Prefix string
	Public bool
	Routes []Route
}

// IsPublic resolves a route's effective access; the route's own marker wins.
func (ctl Controller) IsPublic(r Route) bool {
	switch r.Access {
	case Public:
		return true
	case Protected:
		return false
	default:
		return ctl.Public
	}
}

// HealthCheck is one dependency pinged by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps are the collaborators behind the routes. A nil Metrics handler leaves
// /metrics unregistered; a nil RateLimiter leaves comment creation unthrottled.
type Deps struct {
	Auth         *service.AuthService
	Comments     *service.CommentService
	Thumbnails   *thumbnail.Service
	HealthChecks []HealthCheck
	Metrics      http.Handler
	RateLimiter  *middleware.RateLimiter
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	auth         *service.AuthService
	comments     *service.CommentService
	thumbnails   *thumbnail.Service
	healthChecks []HealthCheck
	metrics      http.Handler
	limiter      *middleware.RateLimiter
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Deps) HandlerSet {
	return HandlerSet{
		log:          log,
		cfg:          cfg,
		auth:         deps.Auth,
		comments:     deps.Comments,
		thumbnails:   deps.Thumbnails,
		healthChecks: deps.HealthChecks,
		metrics:      deps.Metrics,
		limiter:      deps.RateLimiter,
	}
}

// Controllers is the route table of the API.
func (h HandlerSet) Controllers() []Controller {
	var createGuards []gin.HandlerFunc
	if h.limiter != nil {
		createGuards = append(createGuards, h.limiter.Middleware())
	}

	controllers := []Controller{
		{
			Name:   "AuthController",
			Prefix: "/auth",
			Public: true,
			Routes: []Route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Login},
				{Method: http.MethodPost, Path: "/signup", Handler: h.SignUp},
				{Method: http.MethodGet, Path: "/status", Access: Protected, Handler: h.Status},
			},
		},
		{
			Name:   "CommentController",
			Prefix: "/comment",
			Routes: []Route{
				{Method: http.MethodPost, Path: "/create", Access: Public, Middleware: createGuards, Handler: h.CreateComment},
				{Method: http.MethodDelete, Path: "/delete", Handler: h.DeleteComment},
				{Method: http.MethodPatch, Path: "/update", Handler: h.UpdateComment},
				{Method: http.MethodGet, Path: "/list", Access: Public, Handler: h.ListComments},
				{Method: http.MethodGet, Path: "/recent", Access: Public, Handler: h.RecentComments},
			},
		},
		{
			Name:   "UserController",
			Prefix: "/user",
			Routes: []Route{
				{Method: http.MethodGet, Path: "/list", Handler: h.ListUsers},
			},
		},
		{
			Name:   "ThumbnailController",
			Prefix: "/thumbnail",
			Public: true,
			Routes: []Route{
				{Method: http.MethodGet, Path: "/*path", Handler: h.Thumbnail},
			},
		},
		{
			Name:   "HealthController",
			Public: true,
			Routes: []Route{
				{Method: http.MethodGet, Path: "/healthz", Handler: h.Health},
			},
		},
	}

	if h.metrics != nil {
		controllers = append(controllers, Controller{
			Name:   "MetricsController",
			Public: true,
			Routes: []Route{
				{Method: http.MethodGet, Path: "/metrics", Handler: gin.WrapH(h.metrics)},
			},
		})
	}
	return controllers
}

// Register mounts every controller. Each route gets a span named after its
// controller, then the session gate for its effective access, so rejected
// requests are traced too.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	for _, ctl := range h.Controllers() {
		group := router.Group(ctl.Prefix)
		for _, route := range ctl.Routes {
			chain := make([]gin.HandlerFunc, 0, len(route.Middleware)+3)
			chain = append(chain,
				middleware.Trace(tracing.TracerName, ctl.Name),
				middleware.Gate(h.auth, h.cfg.Security.CookieName, ctl.IsPublic(route), h.log),
			)
			chain = append(chain, route.Middleware...)
			chain = append(chain, route.Handler)
			group.Handle(route.Method, route.Path, chain...)
		}
	}
}
