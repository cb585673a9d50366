package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core/principal"
)

type principalApi struct {
	svc *principal.Service
}

func registerPrincipalAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *principal.Service) {
	api := principalApi{svc: svc}

	pg := g.Group("/principals", jwt, adminMiddleware())
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)

	g.GET("/schools", api.schools, jwt, adminMiddleware())
}

func (api *principalApi) create(ctx echo.Context) error {
	var data principal.NewPrincipal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrincipal")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prl, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == principal.ErrSchoolNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating principal")
	}
	return ctx.JSON(http.StatusCreated, prl)
}

func (api *principalApi) query(ctx echo.Context) error {
	principals, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying principals")
	}
	if principals == nil {
		principals = []principal.Principal{}
	}
	return ctx.JSON(http.StatusOK, principals)
}

func (api *principalApi) retrieve(ctx echo.Context) error {
	prl, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding principal")
	}
	return ctx.JSON(http.StatusOK, prl)
}

func (api *principalApi) schools(ctx echo.Context) error {
	schools, err := api.svc.Schools(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []principal.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}
