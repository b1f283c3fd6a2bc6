package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core/achievement"
	"github.com/teayouth/portal/core/user"
)

type achievementApi struct {
	svc *achievement.Service
}

func registerAchievementAPI(g *echo.Group, cred echo.MiddlewareFunc, svc *achievement.Service) {
	api := achievementApi{svc: svc}

	ag := g.Group("/achievements")

	// the share page needs no credential
	ag.GET("/shared/:token", api.retrieveShared)

	// school-scoped management endpoints
	mg := ag.Group("", cred)
	mg.POST("", api.create)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("", api.destroyMultiple)
}

// Handlers

func (api *achievementApi) retrieveShared(ctx echo.Context) error {
	ach, err := api.svc.GetShared(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return errors.Wrap(err, "finding shared achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) create(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data achievement.NewAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAchievement")
	}
	// non-admins can only record achievements for their own school
	if !principal.HasRolePrefix(user.RoleAdmin) || data.SchoolID == "" {
		data.SchoolID = principal.SchoolID
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ach, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating achievement")
	}
	return ctx.JSON(http.StatusCreated, ach)
}

func (api *achievementApi) query(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	schoolID := principal.SchoolID
	if principal.HasRolePrefix(user.RoleAdmin) {
		if qID := ctx.QueryParam("school_id"); qID != "" {
			schoolID = qID
		}
	}

	achs, err := api.svc.QueryBySchool(ctx.Request().Context(), schoolID)
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}
	if achs == nil {
		achs = []achievement.Achievement{}
	}
	return ctx.JSON(http.StatusOK, achs)
}

func (api *achievementApi) retrieve(ctx echo.Context) error {
	ach, err := api.getOwned(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) update(ctx echo.Context) error {
	ach, err := api.getOwned(ctx)
	if err != nil {
		return err
	}

	var data achievement.UpdateAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAchievement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ach, err = api.svc.Update(ctx.Request().Context(), ach.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) destroyMultiple(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// non-admins can only touch their own school's achievements
	if !principal.HasRolePrefix(user.RoleAdmin) {
		for _, id := range query.IDs {
			ach, err := api.svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "finding achievement by ID")
			}
			if ach.SchoolID != principal.SchoolID {
				return errHttpNotFound
			}
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting achievements")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwned fetches the achievement and checks school ownership; missing and
// foreign achievements are indistinguishable.
func (api *achievementApi) getOwned(ctx echo.Context) (achievement.Achievement, error) {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return achievement.Achievement{}, err
	}

	ach, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "finding achievement by ID")
	}
	if !principal.HasRolePrefix(user.RoleAdmin) && ach.SchoolID != principal.SchoolID {
		return achievement.Achievement{}, errHttpNotFound
	}
	return ach, nil
}
