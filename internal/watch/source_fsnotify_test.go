package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOp(t *testing.T) {
	assert.True(t, mapOp(fsnotify.Write).Has(KindModify))
	assert.True(t, mapOp(fsnotify.Create).Has(KindCreate))
	assert.True(t, mapOp(fsnotify.Remove).Has(KindDelete))
	assert.True(t, mapOp(fsnotify.Rename).Has(KindMovedFrom))
	assert.True(t, mapOp(fsnotify.Chmod).Has(KindAttrib))
	assert.False(t, mapOp(fsnotify.Create).Has(KindModify), "only writes are modify-class")
}

func TestFsnotifySourceReportsModify(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(target, []byte("initial"), 0644))

	src, err := newFsnotifySource(dir)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, os.WriteFile(target, []byte("changed"), 0644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case batch := <-src.Batches():
			require.NotEmpty(t, batch)
			if countModify(batch) > 0 {
				assert.Equal(t, "watched.txt", batch[0].Name)
				return
			}
		case err := <-src.Errors():
			t.Fatalf("source error: %v", err)
		case <-deadline:
			t.Fatal("no modify batch received")
		}
	}
}

func TestFsnotifySourceRegistrationFailure(t *testing.T) {
	_, err := newFsnotifySource(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWatchRegistration)
}

func TestFsnotifySourceCloseIdempotent(t *testing.T) {
	src, err := newFsnotifySource(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}
