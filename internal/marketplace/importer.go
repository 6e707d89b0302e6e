package marketplace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// Fetcher fetches the node types of a plugin version and reports the
// version it resolved to.
type Fetcher interface {
	NodeTypes(ctx context.Context, plugin, version string) ([]cache.NodeType, string, error)
}

// Importer loads plugin node types into a cache, at most once per plugin.
// Concurrent imports of the same plugin share one fetch.
type Importer struct {
	fetcher Fetcher
	cache   *cache.Cache
	group   singleflight.Group

	// Parallel bounds ImportAll.
	Parallel int
}

// NewImporter returns an Importer filling c from f.
func NewImporter(f Fetcher, c *cache.Cache) *Importer {
	return &Importer{fetcher: f, cache: c, Parallel: 4}
}

// Import makes sure the node types of plugin are in the cache: already
// loaded, restored from the store, or fetched.
func (im *Importer) Import(ctx context.Context, plugin, version string) error {
	if !registry.IsPluginName(plugin) {
		return fmt.Errorf("%w: %q", ErrInvalidPlugin, plugin)
	}
	if im.cache.Imported(plugin) {
		return nil
	}

	_, err, shared := im.group.Do(plugin, func() (any, error) {
		if im.cache.Imported(plugin) {
			return nil, nil
		}
		restored, err := im.cache.Restore(plugin)
		if err != nil {
			log.Warningf("could not restore node types of %s: %s", plugin, err)
		}
		if restored {
			return nil, nil
		}

		types, resolved, err := im.fetcher.NodeTypes(ctx, plugin, version)
		if err != nil {
			return nil, fmt.Errorf("fetch node types of %s: %w", plugin, err)
		}
		return nil, im.cache.Add(cache.Plugin{Name: plugin, Version: resolved}, types)
	})
	if shared {
		log.Debugf("import of %s shared with a concurrent request", plugin)
	}
	return err
}

// Plugin names one plugin to import.
type Plugin struct {
	Name    string
	Version string
}

// ImportAll imports every plugin, a few at a time. It returns the first
// error but still lets the other imports finish.
func (im *Importer) ImportAll(ctx context.Context, plugins []Plugin) error {
	var g errgroup.Group
	if im.Parallel > 0 {
		g.SetLimit(im.Parallel)
	}
	for _, p := range plugins {
		g.Go(func() error {
			return im.Import(ctx, p.Name, p.Version)
		})
	}
	return g.Wait()
}
