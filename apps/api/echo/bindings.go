package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

const (
	orderingParam = "ordering"
	pageParam     = "page"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pageNumber reads the requested page, 1 when absent. Range checks belong to the services.
func pageNumber(ctx echo.Context) (int, error) {
	val := ctx.QueryParam(pageParam)
	if val == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: pageParam, Error: "page must be an integer"})
	}
	return page, nil
}

// formUpload reads the multipart file sent as `field`; nil when none was sent.
func formUpload(ctx echo.Context, field string, maxSize int64) (*core.Upload, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", field)
	}
	defer f.Close()

	up, err := core.NewUpload(fh.Filename, f, maxSize)
	switch err {
	case nil:
		return &up, nil
	case core.ErrEmptyFile, core.ErrFileTooLarge:
		return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: err.Error()})
	default:
		return nil, errors.Wrapf(err, "reading %s", field)
	}
}

// accepted formats of date form values: RFC 3339 and what HTML date inputs send
var formTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// formTime parses the form value `field`; zero when absent.
func formTime(ctx echo.Context, field string) (time.Time, error) {
	val := strings.TrimSpace(ctx.FormValue(field))
	if val == "" {
		return time.Time{}, nil
	}
	for _, layout := range formTimeLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: field, Error: "invalid date"})
}
