package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/download"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/subject"
)

type materialApi struct {
	svc           *material.Service
	subjects      *subject.Service
	downloads     *download.Proxy
	validate      *validator.Validate
	maxUploadSize int64
}

func registerMaterialAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *material.Service,
	subjects *subject.Service,
	downloads *download.Proxy,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := materialApi{
		svc:           svc,
		subjects:      subjects,
		downloads:     downloads,
		validate:      validate,
		maxUploadSize: conf.Files.MaxUploadSize,
	}

	mg := g.Group("/materials")
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.GET("/:id/download", api.download)

	// admin endpoints
	admin := []echo.MiddlewareFunc{jwt, adminMiddleware(conf.Admins)}
	mg.POST("", api.create, admin...)
	mg.DELETE("/:id", api.destroy, admin...)
}

func (api *materialApi) query(ctx echo.Context) error {
	var filter listing.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to listing.Filter")
	}
	page, err := pageNumber(ctx)
	if err != nil {
		return err
	}

	mats, err := api.svc.Query(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *materialApi) retrieve(ctx echo.Context) error {
	mat, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting material")
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *materialApi) create(ctx echo.Context) error {
	var data material.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	up, err := formUpload(ctx, "file", api.maxUploadSize)
	if err != nil {
		return err
	}
	data.File = up

	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, api.validate, api.subjects); err != nil {
		return err
	}

	mat, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *materialApi) download(ctx echo.Context) error {
	mat, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting material")
	}
	return streamFile(ctx, api.downloads, mat.FileURL, mat.Filename)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	mat, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting material")
	}
	if err = api.svc.Delete(reqCtx, mat.ID); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}
