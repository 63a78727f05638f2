package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
)

type ownersApi struct {
	userSvc    *user.Service
	catalogSvc *catalog.Service
	courseSvc  *course.Service
}

func registerOwnersAPI(g *echo.Group, userSvc *user.Service, catalogSvc *catalog.Service, courseSvc *course.Service) {
	api := ownersApi{userSvc: userSvc, catalogSvc: catalogSvc, courseSvc: courseSvc}

	g.GET("/courses", api.queryCourses)
	g.GET("/courses/:id", api.retrieveCourse)
	g.PUT("/courses/:id", api.saveCourse)
	g.DELETE("/courses/:id", api.destroyCourse)
	g.PUT("/malags", api.setMalags)

	g.GET("/catalogs/:id", api.retrieveCatalog)
	g.PUT("/catalogs/:id", api.saveCatalog)
	g.DELETE("/catalogs/:id", api.destroyCatalog)

	g.PUT("/users/:id/permissions", api.setPermissions)
}

// Handlers

func (api *ownersApi) queryCourses(ctx echo.Context) error {
	courses, err := api.courseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *ownersApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *ownersApi) saveCourse(ctx echo.Context) error {
	var c course.Course
	if err := ctx.Bind(&c); err != nil {
		return errors.Wrap(err, "binding to course.Course")
	}
	c.ID = ctx.Param("id")
	if err := core.Validate.Struct(c); err != nil {
		return err
	}
	if err := api.courseSvc.Save(ctx.Request().Context(), c); err != nil {
		return errors.Wrap(err, "saving course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *ownersApi) destroyCourse(ctx echo.Context) error {
	if err := api.courseSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ownersApi) setMalags(ctx echo.Context) error {
	var ids []string
	if err := ctx.Bind(&ids); err != nil {
		return errors.Wrap(err, "binding to malag list")
	}
	if err := api.courseSvc.SetMalags(ctx.Request().Context(), ids); err != nil {
		return errors.Wrap(err, "setting malags")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ownersApi) retrieveCatalog(ctx echo.Context) error {
	cat, err := api.catalogSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding catalog by ID")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *ownersApi) saveCatalog(ctx echo.Context) error {
	var cat catalog.Catalog
	if err := ctx.Bind(&cat); err != nil {
		return errors.Wrap(err, "binding to catalog.Catalog")
	}
	cat.ID = ctx.Param("id")
	cat, err := api.catalogSvc.Save(ctx.Request().Context(), cat)
	if err != nil {
		return errors.Wrap(err, "saving catalog")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *ownersApi) destroyCatalog(ctx echo.Context) error {
	if err := api.catalogSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting catalog")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ownersApi) setPermissions(ctx echo.Context) error {
	var data struct {
		Permissions user.Permissions `json:"permissions"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding permissions")
	}
	if err := api.userSvc.SetPermissions(ctx.Request().Context(), ctx.Param("id"), data.Permissions); err != nil {
		return errors.Wrap(err, "setting permissions")
	}
	return ctx.NoContent(http.StatusNoContent)
}
