package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
)

type studentsApi struct {
	userSvc    *user.Service
	catalogSvc *catalog.Service
	courseSvc  *course.Service
}

func registerStudentsAPI(g *echo.Group, userSvc *user.Service, catalogSvc *catalog.Service, courseSvc *course.Service) {
	api := studentsApi{userSvc: userSvc, catalogSvc: catalogSvc, courseSvc: courseSvc}

	g.GET("/login", api.login)
	g.GET("/catalogs", api.catalogs)
	g.PUT("/catalog", api.selectCatalog)
	g.GET("/courses", api.searchCourses)
	g.POST("/courses", api.importCourses)
	g.GET("/degree-status", api.computeDegreeStatus)
	g.PUT("/details", api.updateDetails)
	g.PUT("/settings", api.updateSettings)
}

// Handlers

func (api *studentsApi) login(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.Login(ctx.Request().Context(), sub)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentsApi) catalogs(ctx echo.Context) error {
	cats, err := api.catalogSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying catalogs")
	}
	if cats == nil {
		cats = []catalog.DisplayCatalog{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *studentsApi) selectCatalog(ctx echo.Context) error {
	var data SelectCatalogRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectCatalogRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.SelectCatalog(ctx.Request().Context(), sub, data.CatalogID)
	if err != nil {
		return errors.Wrap(err, "selecting catalog")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentsApi) searchCourses(ctx echo.Context) error {
	filter, err := bindCourseFilter(ctx)
	if err != nil {
		return err
	}
	courses, err := api.courseSvc.Search(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "searching courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

// importCourses accepts either a JSON list of course statuses or a plain text transcript.
func (api *studentsApi) importCourses(ctx echo.Context) error {
	statuses, err := bindCourseStatuses(ctx)
	if err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if statuses == nil {
		statuses = []course.Status{}
	}
	usr, err := api.userSvc.ImportCourses(ctx.Request().Context(), sub, statuses)
	if err != nil {
		return errors.Wrap(err, "importing courses")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentsApi) computeDegreeStatus(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.ComputeDegreeStatus(ctx.Request().Context(), sub)
	if err != nil {
		return errors.Wrap(err, "computing degree status")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentsApi) updateDetails(ctx echo.Context) error {
	var details user.Details
	if err := ctx.Bind(&details); err != nil {
		return errors.Wrap(err, "binding to user.Details")
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.UpdateDetails(ctx.Request().Context(), sub, details)
	if err != nil {
		return errors.Wrap(err, "updating details")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentsApi) updateSettings(ctx echo.Context) error {
	var settings user.Settings
	if err := ctx.Bind(&settings); err != nil {
		return errors.Wrap(err, "binding to user.Settings")
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.UpdateSettings(ctx.Request().Context(), sub, settings)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, usr)
}
