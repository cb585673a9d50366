package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/ticket"
)

type ticketApi struct {
	svc *ticket.Service
}

func registerTicketAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *ticket.Service) {
	api := ticketApi{svc: svc}

	tg := g.Group("/tickets")

	// support requests may come from any signed-out portal user
	tg.POST("", api.create)

	tg.GET("", api.query, jwt, adminMiddleware())
	tg.GET("/:id", api.retrieve, jwt, adminMiddleware())
	tg.PUT("/:id/status", api.updateStatus, jwt, adminMiddleware())
	tg.POST("/:id/responses", api.reply, jwt, adminMiddleware())
}

func (api *ticketApi) create(ctx echo.Context) error {
	var data ticket.NewTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTicket")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tck, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating ticket")
	}
	return ctx.JSON(http.StatusCreated, tck)
}

func (api *ticketApi) query(ctx echo.Context) error {
	byStatus, err := api.svc.ByStatus(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tickets")
	}
	return ctx.JSON(http.StatusOK, byStatus)
}

func (api *ticketApi) retrieve(ctx echo.Context) error {
	tck, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == ticket.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding ticket")
	}
	return ctx.JSON(http.StatusOK, tck)
}

func (api *ticketApi) updateStatus(ctx echo.Context) error {
	var data TicketStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TicketStatusRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tck, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		if errors.Cause(err) == ticket.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tck)
}

func (api *ticketApi) reply(ctx echo.Context) error {
	var data ticket.NewReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tck, err := api.svc.Reply(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == ticket.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tck)
}
