package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/download"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/core/subscriber"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		Validate        *validator.Validate
		Translator      ut.Translator
		NotificationSvc *notification.Service
		AssignmentSvc   *assignment.Service
		MaterialSvc     *material.Service
		SubjectSvc      *subject.Service
		SubscriberSvc   *subscriber.Service
		Downloads       *download.Proxy
		UploadDir       string // served under /uploads when set
		DisableReqLogs  bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil) // interface compliance check

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf.AppName))
	if s.deps.UploadDir != "" {
		s.app.Static("/uploads", s.deps.UploadDir)
	}

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf.SecretKey))

	registerAdminAPI(api, jwt, conf, s.deps.Validate)
	registerLevelAPI(api, s.deps.NotificationSvc)
	registerNotificationAPI(api, jwt, s.deps.NotificationSvc, s.deps.Validate, conf.Admins)
	registerAssignmentAPI(api, jwt, s.deps.AssignmentSvc, s.deps.SubjectSvc, s.deps.Downloads, s.deps.Validate, conf)
	registerMaterialAPI(api, jwt, s.deps.MaterialSvc, s.deps.SubjectSvc, s.deps.Downloads, s.deps.Validate, conf)
	registerSubjectAPI(api, jwt, s.deps.SubjectSvc, s.deps.Validate, conf.Admins)
	registerSubscriberAPI(api, s.deps.SubscriberSvc, s.deps.Validate)
}

// Start blocks until the server stops. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
	}
}
