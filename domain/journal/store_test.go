package journal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStore_RecordsAndReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j", "journal.db")
	s, err := Open(path, discardLogger)
	require.NoError(t, err)

	sess := photo.Session{ID: uuid.New(), Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	s.Record(storage.Result{Session: sess, Name: "Demo_Photo3D_2024_1_2_3_4_5.png", Path: "/x/a.png", Size: 10})
	s.Record(storage.Result{Session: sess, Depth: true, Name: "Demo_Photo3D_2024_1_2_3_4_5_depth.png", Err: errors.New("disk full")})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s, err = Open(path, discardLogger)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Depth)
	assert.Equal(t, "disk full", entries[0].Error)
	assert.Empty(t, entries[0].Path)
	assert.False(t, entries[1].Depth)
	assert.Equal(t, "/x/a.png", entries[1].Path)
	assert.Equal(t, sess.ID.String(), entries[1].SessionID)
	assert.True(t, entries[1].TakenAt.Equal(sess.Time))

	n, err := s.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFromResult(t *testing.T) {
	e := FromResult(storage.Result{Name: "a.png", Elapsed: 3 * time.Millisecond})
	assert.Equal(t, int64(3000), e.DurationUs)
	assert.Empty(t, e.Error)
	assert.False(t, e.RecordedAt.IsZero())
}
