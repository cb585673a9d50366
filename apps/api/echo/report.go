package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/report"
	"github.com/tkabange/uangalizi/core/staff"
	"github.com/tkabange/uangalizi/core/student"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt)
	rg.POST("", api.submit, roleMiddleware(staff.RoleObserver))
	rg.GET("", api.query, adminMiddleware())
	rg.GET("/pending", api.pending, adminMiddleware())
	rg.GET("/:id", api.retrieve, adminMiddleware())
	rg.PUT("/:id/review", api.review, adminMiddleware())
}

func (api *reportApi) submit(ctx echo.Context) error {
	var data report.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rep, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func (api *reportApi) query(ctx echo.Context) error {
	filter := new(report.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []report.DailyReport{})
	}

	reports, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []report.DailyReport{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) pending(ctx echo.Context) error {
	reports, err := api.svc.PendingReview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending reports")
	}
	if reports == nil {
		reports = []report.DailyReport{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	rep, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == report.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) review(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rep, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), data.Status, data.Feedback)
	if err != nil {
		if errors.Cause(err) == report.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}
