package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"

	"github.com/johnquangdev/meeting-notes/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-notes/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	userHandler    *User
	meetingHandler *Meeting
	authMW         echo.MiddlewareFunc
	rateLimitMW    echo.MiddlewareFunc
	gatherer       prometheus.Gatherer
}

// NewRouter creates a new router with all handlers. rateLimitMW may be nil
// when rate limiting is disabled; gatherer defaults to the global registry.
func NewRouter(
	cfg *config.Config,
	userHandler *User,
	meetingHandler *Meeting,
	authMW echo.MiddlewareFunc,
	rateLimitMW echo.MiddlewareFunc,
	gatherer prometheus.Gatherer,
) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		cfg:            cfg,
		userHandler:    userHandler,
		meetingHandler: meetingHandler,
		authMW:         authMW,
		rateLimitMW:    rateLimitMW,
		gatherer:       gatherer,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/", rt.root)
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))

	e.GET("/api-docs/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/docs.json")))
	e.GET("/docs.json", rt.openAPI)

	rt.setupUserRoutes(e)
	rt.setupMeetingRoutes(e)
}

// setupUserRoutes configures registration and, outside production, the
// development token route
func (rt *Router) setupUserRoutes(e *echo.Echo) {
	e.POST("/users", rt.userHandler.CreateUser)
	if !rt.cfg.IsProduction() {
		e.POST("/token", rt.userHandler.IssueToken)
	}
}

// setupMeetingRoutes configures authenticated meeting routes. Summarization
// and search call the model, so only they are rate limited.
func (rt *Router) setupMeetingRoutes(e *echo.Echo) {
	meetings := e.Group("/meetings", rt.authMW)

	limited := []echo.MiddlewareFunc{}
	if rt.rateLimitMW != nil {
		limited = append(limited, rt.rateLimitMW)
	}

	meetings.POST("", rt.meetingHandler.CreateMeeting, limited...)
	meetings.GET("", rt.meetingHandler.ListMeetings)
	meetings.GET("/search", rt.meetingHandler.SearchMeetings, limited...)
}

func (rt *Router) root(c echo.Context) error {
	return c.JSON(http.StatusOK, common.StatusResponse{OK: true})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, common.HealthResponse{
		Status:      "ok",
		Environment: rt.cfg.Server.Environment,
	})
}

// openAPI serves the registered swagger document
func (rt *Router) openAPI(c echo.Context) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return HandleError(nil, c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(doc))
}
