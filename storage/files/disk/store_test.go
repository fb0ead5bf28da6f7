package diskstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
)

func newStore(t *testing.T) *Store {
	conf := &core.Config{Files: core.FilesConfig{Dir: t.TempDir(), PublicBaseURL: "http://localhost:8000/uploads/"}}
	s, err := New(conf)
	require.NoError(t, err)
	return s
}

func TestStore_SaveDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	url, err := s.Save(ctx, "materials/abc-notes.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), 8)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/materials/abc-notes.pdf", url)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "materials", "abc-notes.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(ctx, "materials/abc-notes.pdf"))
	_, err = os.Stat(filepath.Join(s.Dir(), "materials", "abc-notes.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "materials/abc-notes.pdf"))
}

func TestStore_InvalidKey(t *testing.T) {
	s := newStore(t)
	for _, key := range []string{"", "/", "../outside.pdf", "materials/../../x"} {
		_, err := s.Save(context.Background(), key, "", strings.NewReader("x"), 1)
		assert.Equal(t, ErrInvalidKey, err, "key %q", key)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Save(ctx, "a.pdf", "", strings.NewReader("x"), 1)
	assert.Equal(t, context.Canceled, err)
}
