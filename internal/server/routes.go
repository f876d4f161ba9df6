package server

import (
	"net/http"

	"EarlyPulse_V0.1/internal/auth"
	"EarlyPulse_V0.1/internal/chat"
	"EarlyPulse_V0.1/internal/routine"
	"EarlyPulse_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// maxUploadSize caps multipart bodies on the image endpoint.
const maxUploadSize = "5M"

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)

	chatHandler := chat.NewHandler(s.gemini)
	routineHandler := routine.NewHandler(s.gemini, s.db)

	api := e.Group("/api")
	api.Use(auth.PolicyMiddleware)

	// Chat routes. Both endpoints cost a Gemini call, so they sit behind the
	// per-IP rate limit; the image endpoint additionally caps the body size.
	api.POST("/chat", chatHandler.ChatHandler, RateLimitMiddleware)
	api.POST("/chat-with-image", chatHandler.ChatWithImageHandler, middleware.BodyLimit(maxUploadSize), RateLimitMiddleware)

	// Routine routes.
	v1 := api.Group("/v1/routine")
	v1.GET("/questions", routineHandler.QuestionsHandler)
	v1.POST("/current", routineHandler.CurrentHandler)
	v1.POST("/generate", routineHandler.GenerateHandler, RateLimitMiddleware)

	return e
}

// LoggerMiddleware installs a per-request child logger tagged with the
// request id, creating one when the client did not supply it.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// RateLimitMiddleware applies the sliding-window IP limit to the
// generation-heavy endpoints.
func RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := utility.CheckIPRateLimit(utility.GetRealIP(c)); err != nil {
			return utility.Fail(c, http.StatusTooManyRequests, "TooManyRequests", err.Error())
		}
		return next(c)
	}
}
