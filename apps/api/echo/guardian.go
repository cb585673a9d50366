package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/guardian"
	"github.com/tkabange/uangalizi/core/student"
)

type guardianApi struct {
	svc        *guardian.Service
	studentSvc *student.Service
}

func registerGuardianAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *guardian.Service, studentSvc *student.Service) {
	api := guardianApi{svc: svc, studentSvc: studentSvc}

	gg := g.Group("/guardians", jwt, adminMiddleware())
	gg.POST("", api.create)
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.deactivate)
	gg.GET("/:id/students", api.students)
}

func (api *guardianApi) create(ctx echo.Context) error {
	var data guardian.NewGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGuardian")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	grd, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating guardian")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *guardianApi) query(ctx echo.Context) error {
	filter := new(guardian.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []guardian.Guardian{})
	}
	filter.Clean()
	var ord Ordering
	ord.Bind(ctx)
	filter.Orderings = ord.Orderings

	guardians, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying guardians")
	}
	if guardians == nil {
		guardians = []guardian.Guardian{}
	}
	return ctx.JSON(http.StatusOK, guardians)
}

func (api *guardianApi) retrieve(ctx echo.Context) error {
	grd, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding guardian")
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *guardianApi) update(ctx echo.Context) error {
	var data guardian.UpdateGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardian")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grd, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating guardian")
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *guardianApi) deactivate(ctx echo.Context) error {
	if _, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deactivating guardian")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guardianApi) students(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding guardian")
	}

	students, err := api.studentSvc.ChildrenOf(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying guardian students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}
