package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core/cooperation"
)

type cooperationApi struct {
	svc *cooperation.Service
}

func registerCooperationAPI(g *echo.Group, cred echo.MiddlewareFunc, svc *cooperation.Service) {
	api := cooperationApi{svc: svc}

	cg := g.Group("/cooperation")

	// public intake
	cg.POST("/applications", api.submit)

	// management endpoints
	mg := cg.Group("/applications", cred, adminMiddleware())
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id/status", api.setStatus)
}

// Handlers

func (api *cooperationApi) submit(ctx echo.Context) error {
	var data cooperation.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *cooperationApi) query(ctx echo.Context) error {
	apps, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("status"))
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []cooperation.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *cooperationApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *cooperationApi) setStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}

	app, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "setting application status")
	}
	return ctx.JSON(http.StatusOK, app)
}

type StatusRequest struct {
	Status string `json:"status"`
}
