package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/staff"
	"github.com/tkabange/uangalizi/core/student"
)

type sessionApi struct {
	svc *session.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service) {
	api := sessionApi{svc: svc}

	sg := g.Group("/sessions", jwt, roleMiddleware(staff.RoleObserver))
	sg.POST("", api.log)
	sg.GET("", api.query)

	g.POST("/consultations", api.logConsultation, jwt, roleMiddleware(staff.RolePrincipal))
}

func (api *sessionApi) log(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ses, err := api.svc.Log(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, ses)
}

func (api *sessionApi) query(ctx echo.Context) error {
	filter := new(session.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []session.Session{})
	}

	sessions, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) logConsultation(ctx echo.Context) error {
	var data session.NewConsultation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewConsultation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	con, err := api.svc.LogConsultation(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, con)
}
