package material_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/subject"
	logsvc "github.com/trezcool/deptportal/services/logger"
	inmemdb "github.com/trezcool/deptportal/storage/database/inmem"
	diskstore "github.com/trezcool/deptportal/storage/files/disk"
	testutil "github.com/trezcool/deptportal/tests"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// plainRepository hides the cursor methods of the in-memory repository.
type plainRepository struct {
	material.Repository
}

func setup(t *testing.T, cursors bool) (*material.Service, material.Repository, *subject.Service) {
	t.Helper()
	conf := testutil.NewConfig()
	conf.Files.Dir = t.TempDir()
	logger := logsvc.NewSilentLogger(conf)
	db := inmemdb.Open()

	files, err := diskstore.New(conf)
	require.NoError(t, err)

	repo := inmemdb.NewMaterialRepository(db)
	if !cursors {
		repo = plainRepository{repo}
	}
	svc := material.NewService(repo, listing.NewMemoryCursorCache(), files, logger, conf)
	svc.SetNowFunc(testutil.NewClock(t0).Func())

	subjSvc := subject.NewService(inmemdb.NewSubjectRepository(db))
	_, err = subjSvc.Seed(context.Background(), core.DefaultSubjects...)
	require.NoError(t, err)
	return svc, repo, subjSvc
}

func seed(t *testing.T, repo material.Repository) {
	files := []struct{ id, level, subj, ft, name string }{
		{"m1", core.Level100, "Physics", core.FileTypePDF, "waves.pdf"},
		{"m2", core.Level100, "Physics", core.FileTypeVideo, "waves-lab.mp4"},
		{"m3", core.Level100, "English", core.FileTypePDF, "grammar.pdf"},
		{"m4", core.Level200, "Physics", core.FileTypePowerpoint, "Optics.pptx"},
		{"m5", core.Level100, "Physics", core.FileTypeImage, "diagram.png"},
		{"m6", core.Level100, "Statistics", core.FileTypePDF, "variance.pdf"},
		{"m7", core.Level100, "Physics", core.FileTypePDF, "Waves-2.pdf"},
		{"m8", core.Level100, "Physics", core.FileTypePDF, "heat.pdf"},
	}
	for i, f := range files {
		testutil.CreateMaterial(t, repo, f.id, f.level, f.subj, f.ft, f.name, t0.Add(time.Duration(i)*time.Hour))
	}
}

func TestService_Query(t *testing.T) {
	tests := []struct {
		name      string
		filter    listing.Filter
		page      int
		wantIDs   []string
		wantTotal int
	}{
		{name: "all, page 1", filter: listing.Filter{Level: listing.All}, page: 1, wantIDs: []string{"m8", "m7", "m6", "m5", "m4", "m3"}, wantTotal: 8},
		{name: "all, page 2", page: 2, wantIDs: []string{"m2", "m1"}, wantTotal: 8},
		{name: "past the end", page: 3, wantIDs: []string{}, wantTotal: 8},
		{name: "level and subject", filter: listing.Filter{Level: core.Level100, Subject: "Physics"}, page: 1, wantIDs: []string{"m8", "m7", "m5", "m2", "m1"}, wantTotal: 5},
		{name: "file type", filter: listing.Filter{FileType: core.FileTypePDF}, page: 1, wantIDs: []string{"m8", "m7", "m6", "m3", "m1"}, wantTotal: 5},
		{name: "filename search", filter: listing.Filter{Query: "WAVES"}, page: 1, wantIDs: []string{"m7", "m2", "m1"}, wantTotal: 3},
		{name: "search and file type", filter: listing.Filter{Query: "waves", FileType: core.FileTypePDF}, page: 1, wantIDs: []string{"m7", "m1"}, wantTotal: 2},
	}
	for _, cursors := range []bool{false, true} {
		svc, repo, _ := setup(t, cursors)
		seed(t, repo)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				page, err := svc.Query(context.Background(), tt.filter, tt.page)
				require.NoError(t, err)
				assert.Equal(t, tt.wantIDs, ids(page.Items), "cursors=%v", cursors)
				assert.Equal(t, tt.wantTotal, page.TotalItems, "cursors=%v", cursors)
				assert.Equal(t, tt.page, page.Number)
			})
		}
	}
}

func TestService_CreateInvalidatesCursors(t *testing.T) {
	svc, repo, subjSvc := setup(t, true)
	ctx := context.Background()
	seed(t, repo)

	// warm the cursor cache up to page 2
	page, err := svc.Query(ctx, listing.Filter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m1"}, ids(page.Items))

	nm := material.NewMaterial{Subject: "Physics", File: testutil.NewUpload(t, "momentum.pdf", testutil.PDF)}
	require.NoError(t, nm.Validate(ctx, core.NewValidator(core.NewTranslator()), subjSvc))
	assert.Equal(t, "momentum.pdf", nm.Title)
	assert.Equal(t, core.Level100, nm.Level)

	svc.SetNowFunc(testutil.NewClock(t0.Add(24 * time.Hour)).Func())
	mat, err := svc.Create(ctx, nm)
	require.NoError(t, err)
	assert.Equal(t, core.FileTypePDF, mat.FileType)

	page, err = svc.Query(ctx, listing.Filter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m2", "m1"}, ids(page.Items))
	assert.Equal(t, 9, page.TotalItems)

	require.NoError(t, svc.Delete(ctx, mat.ID, "m8"))
	page, err = svc.Query(ctx, listing.Filter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids(page.Items))
}

func TestService_QueryInvalidPage(t *testing.T) {
	svc, _, _ := setup(t, true)
	_, err := svc.Query(context.Background(), listing.Filter{}, -1)
	assert.Error(t, err)
}

func TestNewMaterial_Validate(t *testing.T) {
	_, _, subjSvc := setup(t, false)
	validate := core.NewValidator(core.NewTranslator())
	ctx := context.Background()

	nm := material.NewMaterial{Subject: "Alchemy", File: testutil.NewUpload(t, "x.pdf", testutil.PDF)}
	assert.Error(t, nm.Validate(ctx, validate, subjSvc))

	nm = material.NewMaterial{Title: "Intro", Subject: "Physics"}
	assert.IsType(t, &core.ValidationError{}, nm.Validate(ctx, validate, subjSvc))
}

func ids(mats []material.Material) []string {
	out := make([]string, 0, len(mats))
	for _, m := range mats {
		out = append(out, m.ID)
	}
	return out
}
