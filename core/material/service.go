package material

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

var ErrNotFound = core.NewNotFoundError("material")

type (
	// Repository filters on level, subject and file type at most; filename search is applied in memory.
	Repository interface {
		CreateMaterial(ctx context.Context, mat Material) (Material, error)
		QueryMaterials(ctx context.Context, filter listing.Filter) ([]Material, error)
		GetMaterialByID(ctx context.Context, id string) (Material, error)
		DeleteMaterialsByID(ctx context.Context, ids ...string) error
	}

	// CursorRepository is a Repository that can also page through materials by cursor.
	CursorRepository interface {
		Repository
		listing.CursorSource[Material]
	}

	SubjectChecker interface {
		SubjectExists(ctx context.Context, name string) (bool, error)
	}

	Service struct {
		repo   Repository
		pager  *listing.CursorPager[Material] // nil unless repo is a CursorRepository
		files  core.FileStore
		logger core.Logger
		conf   core.ListingConfig
		now    core.NowFunc
	}
)

// NewService wires the material service. When repo can be cursor paginated, pages without
// a filename search are read through a CursorPager backed by cache (which may be nil).
func NewService(repo Repository, cache listing.CursorCache, files core.FileStore, logger core.Logger, conf *core.Config) *Service {
	svc := &Service{
		repo:   repo,
		files:  files,
		logger: logger,
		conf:   conf.Listing,
		now:    core.UTCNow,
	}
	if crepo, ok := repo.(CursorRepository); ok {
		svc.pager = listing.NewCursorPager[Material](crepo, cache)
	}
	return svc
}

// SetNowFunc replaces the clock used for upload dates.
func (svc *Service) SetNowFunc(now core.NowFunc) { svc.now = now }

func (svc *Service) Create(ctx context.Context, nm NewMaterial) (Material, error) {
	up := nm.File
	url, err := svc.files.Save(ctx, up.Key("materials"), up.ContentType, up.Reader(), up.Size())
	if err != nil {
		return Material{}, errors.Wrap(err, "saving file")
	}
	mat, err := svc.repo.CreateMaterial(ctx, Material{
		ID:         "mat-" + uuid.NewString(),
		Title:      nm.Title,
		Subject:    nm.Subject,
		Level:      nm.Level,
		Filename:   up.Filename,
		FileURL:    url,
		FileType:   up.FileType,
		UploadDate: svc.now(),
	})
	if err != nil {
		return Material{}, errors.Wrap(err, "creating material")
	}
	svc.invalidate(ctx)
	return mat, nil
}

// Query returns one page of materials. Materials are never hidden, so this is
// the windowless case of the listing pipeline.
func (svc *Service) Query(ctx context.Context, filter listing.Filter, page int) (listing.Page[Material], error) {
	req := listing.PageRequest{Number: page, Size: svc.conf.MaterialsPageSize}
	if err := req.Validate(); err != nil {
		return listing.Page[Material]{}, err
	}
	filter = filter.Clean()

	if svc.pager != nil && filter.Query == "" {
		return svc.pager.Page(ctx, filter, req)
	}

	mats, err := svc.repo.QueryMaterials(ctx, filter.StoreSide())
	if err != nil {
		return listing.Page[Material]{}, errors.Wrap(err, "querying materials")
	}
	return listing.VisibleAndPaged(mats, filter, req, svc.now(), svc.conf.VisibilityWindow)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Material, error) {
	return svc.repo.GetMaterialByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if err := svc.repo.DeleteMaterialsByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting materials")
	}
	svc.invalidate(ctx)
	return nil
}

// invalidate drops cached cursors after a write. Cursors left behind by a
// failure expire with the cache TTL.
func (svc *Service) invalidate(ctx context.Context) {
	if svc.pager == nil {
		return
	}
	if err := svc.pager.Invalidate(ctx); err != nil {
		svc.logger.Warn("invalidating material cursors", errors.Wrap(err, "invalidating material cursors"))
	}
}
