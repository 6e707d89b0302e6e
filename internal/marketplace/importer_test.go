package marketplace_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/marketplace"
)

type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeFetcher) NodeTypes(ctx context.Context, plugin, version string) ([]cache.NodeType, string, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, "", f.err
	}
	return []cache.NodeType{{Type: "cloudify.nodes." + plugin + ".Thing"}}, "1.0", nil
}

func TestImport(t *testing.T) {
	f := &fakeFetcher{}
	c := cache.New(nil, 0)
	im := marketplace.NewImporter(f, c)

	require.NoError(t, im.Import(context.Background(), "cloudify-aws-plugin", ""))
	require.NoError(t, im.Import(context.Background(), "cloudify-aws-plugin", ""))

	assert.EqualValues(t, 1, f.calls.Load())
	assert.True(t, c.Has("cloudify.nodes.cloudify-aws-plugin.Thing"))
}

func TestImportInvalidName(t *testing.T) {
	f := &fakeFetcher{}
	im := marketplace.NewImporter(f, cache.New(nil, 0))

	err := im.Import(context.Background(), "aws", "")
	assert.ErrorIs(t, err, marketplace.ErrInvalidPlugin)
	assert.Zero(t, f.calls.Load())
}

func TestImportSharesConcurrentFetches(t *testing.T) {
	f := &fakeFetcher{delay: 50 * time.Millisecond}
	im := marketplace.NewImporter(f, cache.New(nil, 0))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, im.Import(context.Background(), "cloudify-gcp-plugin", ""))
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestImportFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	c := cache.New(nil, 0)
	im := marketplace.NewImporter(f, c)

	err := im.Import(context.Background(), "cloudify-aws-plugin", "")
	assert.ErrorContains(t, err, "boom")
	assert.False(t, c.Imported("cloudify-aws-plugin"))
}

func TestImportAll(t *testing.T) {
	f := &fakeFetcher{}
	c := cache.New(nil, 0)
	im := marketplace.NewImporter(f, c)

	err := im.ImportAll(context.Background(), []marketplace.Plugin{
		{Name: "cloudify-aws-plugin"},
		{Name: "cloudify-gcp-plugin", Version: "1.0"},
		{Name: "not-a-plugin"},
	})
	assert.ErrorIs(t, err, marketplace.ErrInvalidPlugin)
	assert.True(t, c.Imported("cloudify-aws-plugin"))
	assert.True(t, c.Imported("cloudify-gcp-plugin"))
}
