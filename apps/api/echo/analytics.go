package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/analytics"
)

const defaultOverviewWindowDays = 30

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *analytics.Service) {
	api := analyticsApi{svc: svc}

	ag := g.Group("/analytics", jwt, adminMiddleware())
	ag.GET("/overview", api.overview)
}

func (api *analyticsApi) overview(ctx echo.Context) error {
	windowDays := defaultOverviewWindowDays
	if raw := ctx.QueryParam("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			m := "days must be a number"
			return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": m})
		}
		windowDays = days
	}

	overview, err := api.svc.Overview(ctx.Request().Context(), windowDays)
	if err != nil {
		return errors.Wrap(err, "computing analytics overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}
