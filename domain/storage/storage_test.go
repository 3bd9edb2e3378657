package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/photo3d-go/config"
	"github.com/soocke/photo3d-go/domain/photo"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	return buf.Bytes()
}

func demoSession() photo.Session {
	return photo.Session{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)}
}

func TestDirectPolicy_Writes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	p := &DirectPolicy{Root: StaticDir(root)}
	path, err := p.Write(context.Background(), "a.png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.png"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestDirectPolicy_ResolutionFailure(t *testing.T) {
	p := &DirectPolicy{Root: Failing("no api")}
	_, err := p.Write(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, ErrPathResolution)
}

func TestGalleryPolicy_StagesCopiesAndCleansUp(t *testing.T) {
	private := filepath.Join(t.TempDir(), "private")
	public := t.TempDir()
	p := NewGalleryPolicy("Demo", StaticDir(private), StaticDir(public), discardLogger)

	data := pngBytes(t)
	path, err := p.Write(context.Background(), "Demo_Photo3D_2024_1_2_3_4_5.png", data)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(public, "DCIM", "Demo", "Demo_Photo3D_2024_1_2_3_4_5.png"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = os.Stat(filepath.Join(private, TempName))
	assert.True(t, os.IsNotExist(err), "temp file should be gone, stat err=%v", err)
}

func TestGalleryPolicy_ResolutionFailureWritesNothing(t *testing.T) {
	private := t.TempDir()
	p := NewGalleryPolicy("Demo", StaticDir(private), Failing("no external storage"), discardLogger)
	_, err := p.Write(context.Background(), "x.png", pngBytes(t))
	require.ErrorIs(t, err, ErrPathResolution)

	entries, err := os.ReadDir(private)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGalleryPolicy_RejectsNonPNG(t *testing.T) {
	private := t.TempDir()
	public := t.TempDir()
	p := NewGalleryPolicy("Demo", StaticDir(private), StaticDir(public), discardLogger)
	p.ConfirmTimeout = 20 * time.Millisecond
	_, err := p.Write(context.Background(), "x.png", []byte("not a png"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(public, "DCIM", "Demo", "x.png"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(private, TempName))
	assert.True(t, os.IsNotExist(statErr))
}

// recordingPolicy captures names and optionally fails.
type recordingPolicy struct {
	mu    sync.Mutex
	names []string
	fail  error
}

func (r *recordingPolicy) Write(_ context.Context, name string, _ []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	if r.fail != nil {
		return "", r.fail
	}
	return "/mem/" + name, nil
}

func TestWriter_SavesPairAsync(t *testing.T) {
	pol := &recordingPolicy{}
	w := NewWriter(pol, "Demo", discardLogger)
	var results []Result
	var mu sync.Mutex
	w.OnResult(func(r Result) { mu.Lock(); results = append(results, r); mu.Unlock() })

	s := demoSession()
	w.Save([]byte("c"), false, s)
	w.Save([]byte("d"), true, s)
	require.NoError(t, w.Wait())

	assert.ElementsMatch(t, []string{
		"Demo_Photo3D_2024_1_2_3_4_5.png",
		"Demo_Photo3D_2024_1_2_3_4_5_depth.png",
	}, pol.names)
	st := w.Stats()
	assert.Equal(t, Stats{Queued: 2, Written: 2}, st)
	assert.Len(t, results, 2)
}

func TestWriter_WaitDuringSaves(t *testing.T) {
	pol := &recordingPolicy{}
	w := NewWriter(pol, "Demo", discardLogger)
	s := demoSession()

	const n = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			w.Save([]byte("x"), i%2 == 1, s)
		}
	}()
	for {
		require.NoError(t, w.Wait())
		select {
		case <-done:
			require.NoError(t, w.Wait())
			st := w.Stats()
			assert.Equal(t, uint64(n), st.Queued)
			assert.Equal(t, uint64(n), st.Written)
			assert.Zero(t, st.InFlight)
			return
		default:
		}
	}
}

func TestWriter_FailuresAreCountedNotRetried(t *testing.T) {
	pol := &recordingPolicy{fail: errors.New("disk full")}
	w := NewWriter(pol, "Demo", discardLogger)
	w.Save([]byte("c"), false, demoSession())
	assert.Error(t, w.Wait())
	assert.Len(t, pol.names, 1)
	assert.Equal(t, uint64(1), w.Stats().Failed)
	assert.Equal(t, int64(0), w.Stats().InFlight)
	// the next batch starts clean
	assert.NoError(t, w.Wait())
}

func TestWriter_PanicIsContained(t *testing.T) {
	w := NewWriter(panicPolicy{}, "Demo", discardLogger)
	w.Save(nil, false, demoSession())
	assert.Error(t, w.Wait())
	assert.Equal(t, uint64(1), w.Stats().Failed)
}

type panicPolicy struct{}

func (panicPolicy) Write(context.Context, string, []byte) (string, error) { panic("boom") }

func TestNewPolicy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StoragePolicy = config.PolicyDirect
	p, err := NewPolicy(cfg, discardLogger)
	require.NoError(t, err)
	assert.IsType(t, &DirectPolicy{}, p)

	cfg.StoragePolicy = config.PolicyGallery
	p, err = NewPolicy(cfg, discardLogger)
	require.NoError(t, err)
	assert.IsType(t, &GalleryPolicy{}, p)

	cfg.StoragePolicy = config.PolicyAuto
	p, err = NewPolicy(cfg, discardLogger)
	require.NoError(t, err)
	assert.NotNil(t, p)

	cfg.StoragePolicy = "ftp"
	_, err = NewPolicy(cfg, discardLogger)
	assert.Error(t, err)
}

func TestPublicStorage_EnvOverride(t *testing.T) {
	t.Setenv("EXTERNAL_STORAGE", "/sdcard")
	p, err := PublicStorage("")()
	require.NoError(t, err)
	assert.Equal(t, "/sdcard", p)

	p, err = PublicStorage("/explicit")()
	require.NoError(t, err)
	assert.Equal(t, "/explicit", p)
}
