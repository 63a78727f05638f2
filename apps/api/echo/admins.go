package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/degree"
)

type adminsApi struct {
	degreeSvc *degree.Service
}

func registerAdminsAPI(g *echo.Group, degreeSvc *degree.Service) {
	api := adminsApi{degreeSvc: degreeSvc}

	g.POST("/compute", api.compute)
}

// compute evaluates arbitrary courses against a catalog. Nothing is stored.
func (api *adminsApi) compute(ctx echo.Context) error {
	var data ComputeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ComputeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	st := degree.Status{CourseStatuses: data.CourseStatuses}
	if err := api.degreeSvc.Evaluate(ctx.Request().Context(), data.CatalogID, &st); err != nil {
		return errors.Wrap(err, "computing degree status")
	}
	return ctx.JSON(http.StatusOK, st)
}
