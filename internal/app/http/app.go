package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "vltweb/internal/middleware"
	httprouters "vltweb/internal/transport/http"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	port    string
	secret  string
}

func New(log *slog.Logger, jwtSecret, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmiddleware.Prometheus())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		port:    port,
		secret:  jwtSecret,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api")
	{
		api.GET("/health", s.routers.Health)
		api.POST("/login", s.routers.Login)

		api.GET("/events", s.routers.Events)
		api.POST("/events/notify", s.routers.Notify)

		images := api.Group("/images")
		{
			images.GET("", s.routers.ListImages)
			images.GET("/:id", s.routers.GetImage)
		}

		tracks := api.Group("/tracks")
		{
			tracks.GET("", s.routers.ListTracks)
		}

		quiz := api.Group("/quiz")
		{
			quiz.GET("", s.routers.ListQuizzes)
		}

		admin := api.Group("", appmiddleware.RequireToken(s.secret, "admin"))
		{
			admin.POST("/images", s.routers.CreateImage)
			admin.PUT("/images/:id", s.routers.UpdateImage)
			admin.DELETE("/images/:id", s.routers.DeleteImage)
			admin.POST("/images/bulk", s.routers.BulkReplaceImages)

			admin.POST("/tracks/bulk", s.routers.BulkReplaceTracks)
			admin.POST("/quiz/bulk", s.routers.BulkReplaceQuizzes)
		}
	}
}
