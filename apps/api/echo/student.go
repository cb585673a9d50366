package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/assignment"
	"github.com/tkabange/uangalizi/core/guardian"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/student"
)

type studentApi struct {
	svc    *student.Service
	engine *assignment.Engine
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, engine *assignment.Engine) {
	api := studentApi{svc: svc, engine: engine}

	sg := g.Group("/students", jwt, adminMiddleware())
	sg.POST("", api.enroll)
	sg.GET("", api.query)
	sg.GET("/unassigned", api.unassigned)
	sg.GET("/:id", api.retrieve)
	sg.DELETE("/:id", api.deactivate)
	sg.POST("/:id/guardians", api.addGuardian)
	sg.DELETE("/:id/guardians/:guardianID", api.removeGuardian)
	sg.POST("/:id/assign", api.assign)
	sg.POST("/:id/unassign", api.unassign)
}

func (api *studentApi) enroll(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	var ord Ordering
	ord.Bind(ctx)
	filter.Orderings = ord.Orderings

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) unassigned(ctx echo.Context) error {
	students, err := api.svc.Unassigned(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying unassigned students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) deactivate(ctx echo.Context) error {
	if _, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deactivating student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) addGuardian(ctx echo.Context) error {
	var data LinkGuardianRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkGuardianRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.svc.AddGuardian(ctx.Request().Context(), ctx.Param("id"), data.GuardianID)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound, guardian.ErrNotFound:
			return errHttpNotFound
		case student.ErrGuardianLinked:
			return echo.NewHTTPError(http.StatusConflict, student.ErrGuardianLinked.Error())
		}
		return errors.Wrap(err, "linking guardian")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) removeGuardian(ctx echo.Context) error {
	stu, err := api.svc.RemoveGuardian(ctx.Request().Context(), ctx.Param("id"), ctx.Param("guardianID"))
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound:
			return errHttpNotFound
		case student.ErrGuardianNotLinked:
			// an absent relation is a missing resource, not a conflict
			return echo.NewHTTPError(http.StatusNotFound, student.ErrGuardianNotLinked.Error())
		}
		return errors.Wrap(err, "unlinking guardian")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) assign(ctx echo.Context) error {
	var data AssignRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.engine.Assign(ctx.Request().Context(), ctx.Param("id"), data.ObserverID)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound, observer.ErrNotFound:
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) unassign(ctx echo.Context) error {
	stu, err := api.engine.Unassign(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}
