package stores

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	testutil "github.com/trezcool/deptportal/tests"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	conf := testutil.NewConfig()
	conf.Database.Backend = core.BackendMemory
	s, err := Open(ctx, conf)
	require.NoError(t, err)
	assert.NotNil(t, s.Tx)
	assert.NotNil(t, s.Materials)

	cache, err := s.CursorCache(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &listing.MemoryCursorCache{}, cache)
	assert.NoError(t, s.Close(ctx))

	conf.Database.Backend = "sqlite"
	_, err = Open(ctx, conf)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestNewFileStore(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Files.Dir = t.TempDir()

	store, dir, err := NewFileStore(conf)
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, conf.Files.Dir, dir)

	conf.Files.Backend = "ftp"
	_, _, err = NewFileStore(conf)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}
