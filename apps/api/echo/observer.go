package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/assignment"
	"github.com/tkabange/uangalizi/core/observer"
)

type observerApi struct {
	svc    *observer.Service
	engine *assignment.Engine
}

// UtilizationResponse reports an observer's live load against capacity.
type UtilizationResponse struct {
	ObserverID string `json:"observer_id"`
	Load       int    `json:"load"`
	Capacity   int    `json:"capacity"`
}

func registerObserverAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *observer.Service, engine *assignment.Engine) {
	api := observerApi{svc: svc, engine: engine}

	og := g.Group("/observers", jwt, adminMiddleware())
	og.POST("", api.create)
	og.GET("", api.query)
	og.GET("/with-capacity", api.withCapacity)
	og.GET("/:id", api.retrieve)
	og.GET("/:id/utilization", api.utilization)
	og.DELETE("/:id", api.deactivate)
}

func (api *observerApi) create(ctx echo.Context) error {
	var data observer.NewObserver
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewObserver")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	obs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == observer.ErrEmailExists {
			return echo.NewHTTPError(http.StatusConflict, observer.ErrEmailExists.Error())
		}
		return errors.Wrap(err, "creating observer")
	}
	return ctx.JSON(http.StatusCreated, obs)
}

func (api *observerApi) query(ctx echo.Context) error {
	filter := new(observer.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []observer.Observer{})
	}
	filter.Clean()

	observers, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying observers")
	}
	if observers == nil {
		observers = []observer.Observer{}
	}
	return ctx.JSON(http.StatusOK, observers)
}

func (api *observerApi) withCapacity(ctx echo.Context) error {
	observers, err := api.svc.WithCapacity(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying observers with capacity")
	}
	if observers == nil {
		observers = []observer.Observer{}
	}
	return ctx.JSON(http.StatusOK, observers)
}

func (api *observerApi) retrieve(ctx echo.Context) error {
	obs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == observer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding observer")
	}
	return ctx.JSON(http.StatusOK, obs)
}

func (api *observerApi) utilization(ctx echo.Context) error {
	id := ctx.Param("id")
	load, capacity, err := api.engine.Utilization(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == observer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing utilization")
	}
	return ctx.JSON(http.StatusOK, UtilizationResponse{ObserverID: id, Load: load, Capacity: capacity})
}

func (api *observerApi) deactivate(ctx echo.Context) error {
	if _, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == observer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deactivating observer")
	}
	return ctx.NoContent(http.StatusNoContent)
}
