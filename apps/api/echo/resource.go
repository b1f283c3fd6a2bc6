package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core/resource"
)

type resourceApi struct {
	svc *resource.Service
}

func registerResourceAPI(g *echo.Group, optCred, reqCred echo.MiddlewareFunc, svc *resource.Service) {
	api := resourceApi{svc: svc}

	rg := g.Group("/resources")

	// catalog endpoints; the credential is optional, access control happens
	// at URL delivery time
	rg.GET("", api.query, optCred)
	rg.GET("/:id", api.retrieve, optCred)
	rg.GET("/:id/url", api.deliverURL, optCred)

	// management endpoints
	mg := rg.Group("", reqCred, adminMiddleware())
	mg.POST("", api.create)
	mg.PUT("/:id", api.update)
	mg.DELETE("", api.destroyMultiple)
}

// Handlers

func (api *resourceApi) create(ctx echo.Context) error {
	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *resourceApi) query(ctx echo.Context) error {
	filter := new(resource.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []resource.Resource{})
	}

	// anonymous callers only see active resources
	if contextPrincipalPtr(ctx) == nil {
		active := true
		filter.IsActive = &active
	}

	resources, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	res, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding resource by ID")
	}
	if !res.IsActive && contextPrincipalPtr(ctx) == nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, res)
}

// deliverURL authorizes the caller against the resource's access level and
// returns the delivery URL. Public resources need no credential; the rest
// are checked against the principal decoded from the optional credential.
func (api *resourceApi) deliverURL(ctx echo.Context) error {
	principal := contextPrincipalPtr(ctx)

	url, err := api.svc.DeliverURL(ctx.Request().Context(), ctx.Param("id"), principal)
	if err != nil {
		return errors.Wrap(err, "delivering resource URL")
	}
	return ctx.JSON(http.StatusOK, ResourceURLResponse{URL: url})
}

func (api *resourceApi) update(ctx echo.Context) error {
	var data resource.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting resources")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type ResourceURLResponse struct {
	URL string `json:"url"`
}
