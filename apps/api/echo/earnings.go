package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/billing"
	"github.com/tkabange/uangalizi/core/earnings"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/principal"
)

type earningsApi struct {
	calc     *earnings.Calculator
	payments billing.Repository
}

func registerEarningsAPI(g *echo.Group, jwt echo.MiddlewareFunc, calc *earnings.Calculator, payments billing.Repository) {
	api := earningsApi{calc: calc, payments: payments}

	eg := g.Group("/earnings", jwt, adminMiddleware())
	eg.GET("/observers/:id", api.observerSummary)
	eg.GET("/principals/:id", api.principalSummary)

	pg := g.Group("/payments", jwt, adminMiddleware())
	pg.POST("", api.createPayment)
	pg.GET("", api.queryPayments)
	pg.POST("/:id/pay", api.markPaid)
}

func (api *earningsApi) period(ctx echo.Context) (earnings.Period, error) {
	var query PeriodQuery
	if err := ctx.Bind(&query); err != nil {
		return earnings.Period{}, errors.Wrap(err, "binding to PeriodQuery")
	}
	return query.Period()
}

func (api *earningsApi) observerSummary(ctx echo.Context) error {
	period, err := api.period(ctx)
	if err != nil {
		return err
	}

	summary, err := api.calc.ObserverSummary(ctx.Request().Context(), ctx.Param("id"), period)
	if err != nil {
		if errors.Cause(err) == observer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing observer earnings")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *earningsApi) principalSummary(ctx echo.Context) error {
	period, err := api.period(ctx)
	if err != nil {
		return err
	}

	summary, err := api.calc.PrincipalSummary(ctx.Request().Context(), ctx.Param("id"), period)
	if err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing principal earnings")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *earningsApi) createPayment(ctx echo.Context) error {
	var data NewPaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPaymentRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	pay := data.Payment()
	pay.ID = uuid.New().String()

	pay, err := api.payments.CreatePayment(ctx.Request().Context(), pay)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pay)
}

func (api *earningsApi) queryPayments(ctx echo.Context) error {
	filter := billing.QueryFilter{
		OwnerID:   ctx.QueryParam("owner_id"),
		Status:    billing.Status(ctx.QueryParam("status")),
		FromMonth: ctx.QueryParam("from_month"),
		ToMonth:   ctx.QueryParam("to_month"),
	}

	payments, err := api.payments.FilterPayments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []billing.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *earningsApi) markPaid(ctx echo.Context) error {
	pay, err := api.payments.MarkPaid(ctx.Request().Context(), ctx.Param("id"), time.Now().UTC())
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking payment paid")
	}
	return ctx.JSON(http.StatusOK, pay)
}
