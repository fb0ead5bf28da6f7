package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/download"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/subject"
)

type assignmentApi struct {
	svc           *assignment.Service
	subjects      *subject.Service
	downloads     *download.Proxy
	validate      *validator.Validate
	maxUploadSize int64
}

func registerAssignmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *assignment.Service,
	subjects *subject.Service,
	downloads *download.Proxy,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := assignmentApi{
		svc:           svc,
		subjects:      subjects,
		downloads:     downloads,
		validate:      validate,
		maxUploadSize: conf.Files.MaxUploadSize,
	}

	asg := g.Group("/assignments")
	asg.GET("", api.query)
	asg.GET("/:id", api.retrieve)
	asg.POST("/:id/submit", api.submit)
	asg.GET("/:id/download", api.download)
	asg.GET("/:id/answer", api.downloadAnswer)

	// admin endpoints
	admin := []echo.MiddlewareFunc{jwt, adminMiddleware(conf.Admins)}
	asg.POST("", api.create, admin...)
	asg.POST("/:id/answer", api.uploadAnswer, admin...)
	asg.DELETE("/:id", api.destroy, admin...)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	var filter listing.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to listing.Filter")
	}
	page, err := pageNumber(ctx)
	if err != nil {
		return err
	}

	asgs, err := api.svc.Query(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	asg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

// bindNewAssignment reads a multipart NewAssignment. The deadline is parsed by hand:
// the default binder cannot set time.Time fields from form values.
func (api *assignmentApi) bindNewAssignment(ctx echo.Context) (assignment.NewAssignment, error) {
	data := assignment.NewAssignment{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Subject:     ctx.FormValue("subject"),
		Level:       ctx.FormValue("level"),
	}
	var err error
	if data.Deadline, err = formTime(ctx, "deadline"); err != nil {
		return data, err
	}
	if data.File, err = formUpload(ctx, "file", api.maxUploadSize); err != nil {
		return data, err
	}
	if data.Answer, err = formUpload(ctx, "answer_file", api.maxUploadSize); err != nil {
		return data, err
	}
	return data, nil
}

func (api *assignmentApi) create(ctx echo.Context) error {
	data, err := api.bindNewAssignment(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, api.validate, api.subjects); err != nil {
		return err
	}

	asg, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	asg, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) uploadAnswer(ctx echo.Context) error {
	up, err := formUpload(ctx, "answer_file", api.maxUploadSize)
	if err != nil {
		return err
	}
	asg, err := api.svc.UploadAnswer(ctx.Request().Context(), ctx.Param("id"), up)
	if err != nil {
		return errors.Wrap(err, "uploading answer")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) download(ctx echo.Context) error {
	asg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return streamFile(ctx, api.downloads, asg.File.URL, download.AssignmentFilename(asg.Title, asg.File.Filename))
}

func (api *assignmentApi) downloadAnswer(ctx echo.Context) error {
	asg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	if asg.Answer == nil {
		return assignment.ErrAnswerNotFound
	}
	filename := download.AnswerFilename(asg.Title, asg.Answer.Filename, asg.Answer.Type)
	return streamFile(ctx, api.downloads, asg.Answer.URL, filename)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// streamFile relays the stored file at url as an attachment named filename.
func streamFile(ctx echo.Context, downloads *download.Proxy, url, filename string) error {
	f, err := downloads.Fetch(ctx.Request().Context(), url, filename)
	if err != nil {
		return errors.Wrap(err, "fetching file")
	}
	defer f.Body.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, f.Disposition())
	return ctx.Stream(http.StatusOK, f.ContentType, f.Body)
}
