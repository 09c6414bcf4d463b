package baseline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/oaserrors"
)

const petsV1 = "openapi: 3.0.0\ninfo: {title: Pet Store, version: '1'}\npaths: {}\n"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pets.yml", petsV1)
	writeFile(t, dir, "broken.json", "{")
	src := DirSource{Dir: dir}
	ctx := context.Background()

	doc, err := src.Baseline(ctx, "pets")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Pet Store", doc.Title())

	doc, err = src.Baseline(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, doc, "absent baselines are unavailable, not errors")

	_, err = src.Baseline(ctx, "broken")
	assert.ErrorIs(t, err, oaserrors.ErrFetch)
	assert.ErrorIs(t, err, oaserrors.ErrParse)

	_, err = src.Baseline(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, oaserrors.ErrFetch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Baseline(cancelled, "pets")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("pet-store"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID(".."))
	assert.False(t, ValidID("a/b"))
	assert.False(t, ValidID(`a\b`))
}

func TestKeyAndSlug(t *testing.T) {
	doc, err := document.Parse(petsV1)
	require.NoError(t, err)

	assert.Equal(t, "pet-store", Key(doc, ""))
	assert.Equal(t, "explicit", Key(doc, "explicit"))
	assert.Equal(t, "", Key(nil, ""))

	assert.Equal(t, "users-api-v2", Slug("  Users API (v2) "))
	assert.Equal(t, "", Slug("!!!"))
}

type countingSource struct {
	calls atomic.Int32
	docs  map[string]*document.Document
	err   error
}

func (s *countingSource) Baseline(_ context.Context, id string) (*document.Document, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[id], nil
}

func newDocs(t *testing.T, ids ...string) map[string]*document.Document {
	t.Helper()
	docs := make(map[string]*document.Document, len(ids))
	for _, id := range ids {
		doc, err := document.Parse(petsV1)
		require.NoError(t, err)
		docs[id] = doc
	}
	return docs
}

func TestCacheHit(t *testing.T) {
	src := &countingSource{docs: newDocs(t, "a")}
	c := NewCache(src)
	ctx := context.Background()

	first, err := c.Baseline(ctx, "a")
	require.NoError(t, err)
	second, err := c.Baseline(ctx, "a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCacheDoesNotStoreMisses(t *testing.T) {
	src := &countingSource{docs: map[string]*document.Document{}}
	c := NewCache(src)

	for range 2 {
		doc, err := c.Baseline(context.Background(), "nope")
		assert.NoError(t, err)
		assert.Nil(t, doc)
	}
	assert.EqualValues(t, 2, src.calls.Load())
	assert.Zero(t, c.Len())

	src.err = &oaserrors.FetchError{ID: "nope", Message: "unreachable"}
	_, err := c.Baseline(context.Background(), "nope")
	assert.ErrorIs(t, err, oaserrors.ErrFetch)
	assert.Zero(t, c.Len())
}

func TestCacheTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	src := &countingSource{docs: newDocs(t, "a", "b")}
	c := NewCache(src, WithTTL(time.Minute), withClock(clock))
	ctx := context.Background()

	_, _ = c.Baseline(ctx, "a")
	now = now.Add(30 * time.Second)
	_, _ = c.Baseline(ctx, "a")
	assert.EqualValues(t, 1, src.calls.Load())

	now = now.Add(2 * time.Minute)
	_, _ = c.Baseline(ctx, "a")
	assert.EqualValues(t, 2, src.calls.Load(), "expired entries are refetched")

	_, _ = c.Baseline(ctx, "b")
	now = now.Add(2 * time.Minute)
	c.Sweep()
	assert.Zero(t, c.Len())
}

func TestCacheLRUEviction(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	src := &countingSource{docs: newDocs(t, "a", "b", "c")}
	c := NewCache(src, WithMaxEntries(2), withClock(clock))
	ctx := context.Background()

	_, _ = c.Baseline(ctx, "a")
	_, _ = c.Baseline(ctx, "b")
	_, _ = c.Baseline(ctx, "a") // a is now more recent than b
	_, _ = c.Baseline(ctx, "c") // evicts b
	assert.Equal(t, 2, c.Len())
	assert.EqualValues(t, 3, src.calls.Load())

	_, _ = c.Baseline(ctx, "a")
	assert.EqualValues(t, 3, src.calls.Load(), "a survived")
	_, _ = c.Baseline(ctx, "b")
	assert.EqualValues(t, 4, src.calls.Load(), "b was evicted")
}

func TestCacheConcurrentMissesShareFetch(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	docs := newDocs(t, "a")
	src := SourceFunc(func(ctx context.Context, id string) (*document.Document, error) {
		calls.Add(1)
		<-release
		return docs[id], nil
	})
	c := NewCache(src)

	var wg sync.WaitGroup
	results := make([]*document.Document, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Baseline(context.Background(), "a")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, doc := range results {
		assert.Same(t, docs["a"], doc)
	}
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.Equal(t, 1, c.Len())
}

func TestCacheCallerDeadlineDoesNotCancelSharedFetch(t *testing.T) {
	docs := newDocs(t, "a")
	started := make(chan struct{})
	var once sync.Once
	src := SourceFunc(func(ctx context.Context, id string) (*document.Document, error) {
		once.Do(func() { close(started) })
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return docs[id], nil
		}
	})
	c := NewCache(src)

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	var shortErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, shortErr = c.Baseline(short, "a")
	}()
	<-started

	doc, err := c.Baseline(context.Background(), "a")
	wg.Wait()

	require.NoError(t, err)
	assert.Same(t, docs["a"], doc)
	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	assert.Equal(t, 1, c.Len())
}

func TestCacheFetchTimeout(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, _ string) (*document.Document, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := NewCache(src, WithFetchTimeout(10*time.Millisecond))

	doc, err := c.Baseline(context.Background(), "a")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, c.Len())
}

func TestCacheSweeperStops(t *testing.T) {
	c := NewCache(SourceFunc(func(context.Context, string) (*document.Document, error) {
		return nil, errors.New("unused")
	}))
	ctx, cancel := context.WithCancel(context.Background())
	c.StartSweeper(ctx, time.Millisecond)
	c.StartSweeper(ctx, time.Millisecond) // no second goroutine
	cancel()

	assert.Eventually(t, func() bool { return !c.sweeperStarted.Load() }, time.Second, time.Millisecond)
	c.Purge()
	assert.Zero(t, c.Len())
}
