package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/inquiry"
)

type inquiryApi struct {
	svc *inquiry.Service
}

func registerInquiryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *inquiry.Service) {
	api := inquiryApi{svc: svc}

	ig := g.Group("/inquiries")

	// contact form submissions come from the public website
	ig.POST("", api.submit)

	ig.GET("", api.query, jwt, adminMiddleware())
	ig.GET("/:id", api.retrieve, jwt, adminMiddleware())
	ig.PUT("/:id/status", api.updateStatus, jwt, adminMiddleware())
}

func (api *inquiryApi) submit(ctx echo.Context) error {
	var data inquiry.NewInquiry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInquiry")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inq, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting inquiry")
	}
	return ctx.JSON(http.StatusCreated, inq)
}

func (api *inquiryApi) query(ctx echo.Context) error {
	filter := new(inquiry.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []inquiry.Inquiry{})
	}
	filter.Clean()

	inquiries, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying inquiries")
	}
	if inquiries == nil {
		inquiries = []inquiry.Inquiry{}
	}
	return ctx.JSON(http.StatusOK, inquiries)
}

func (api *inquiryApi) retrieve(ctx echo.Context) error {
	inq, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == inquiry.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding inquiry")
	}
	return ctx.JSON(http.StatusOK, inq)
}

func (api *inquiryApi) updateStatus(ctx echo.Context) error {
	var data InquiryStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InquiryStatusRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inq, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status, data.Notes)
	if err != nil {
		if errors.Cause(err) == inquiry.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, inq)
}
