package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/achievement"
	"github.com/teayouth/portal/core/auth"
	"github.com/teayouth/portal/core/cooperation"
	"github.com/teayouth/portal/core/course"
	"github.com/teayouth/portal/core/resource"
	"github.com/teayouth/portal/core/school"
	"github.com/teayouth/portal/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		AuthSvc        *auth.Service
		UserSvc        *user.Service
		SchoolSvc      *school.Service
		CourseSvc      *course.Service
		ResourceSvc    *resource.Service
		AchievementSvc *achievement.Service
		CooperationSvc *cooperation.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home(conf))

	v1 := s.app.Group("/v1")
	authority := s.deps.AuthSvc.Authority()
	optCred := credentialMiddleware(authority, false)
	reqCred := credentialMiddleware(authority, true)

	registerAuthAPI(v1, reqCred, s.deps.AuthSvc, s.deps.UserSvc, conf)
	registerUserAPI(v1, reqCred, s.deps.UserSvc)
	registerSchoolAPI(v1, reqCred, s.deps.SchoolSvc)
	registerCourseAPI(v1, reqCred, s.deps.CourseSvc)
	registerResourceAPI(v1, optCred, reqCred, s.deps.ResourceSvc)
	registerAchievementAPI(v1, reqCred, s.deps.AchievementSvc)
	registerCooperationAPI(v1, reqCred, s.deps.CooperationSvc)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown triggers a graceful shutdown from within the app.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+conf.AppName+" API!")
	}
}
