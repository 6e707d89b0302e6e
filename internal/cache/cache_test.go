package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
)

func vpcTypes() []cache.NodeType {
	return []cache.NodeType{
		{
			Type: "cloudify.nodes.aws.ec2.Vpc",
			Properties: map[string]cache.Property{
				"use_external_resource": {"type": "boolean", "default": false},
				"resource_config":       {"type": "dict", "required": true, "CidrBlock": ""},
			},
		},
		{Type: "cloudify.nodes.aws.ec2.Subnet"},
	}
}

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.OpenStore(filepath.Join(t.TempDir(), "types.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCacheInMemory(t *testing.T) {
	c := cache.New(nil, 0)
	assert.False(t, c.Imported("cloudify-aws-plugin"))

	require.NoError(t, c.Add(cache.Plugin{Name: "cloudify-aws-plugin", Version: "3.0.0"}, vpcTypes()))

	assert.True(t, c.Imported("cloudify-aws-plugin"))
	assert.True(t, c.Has("cloudify.nodes.aws.ec2.Vpc"))
	assert.False(t, c.Has("cloudify.nodes.Compute"))
	assert.Equal(t, []string{"cloudify.nodes.aws.ec2.Subnet", "cloudify.nodes.aws.ec2.Vpc"}, c.Names())
	assert.Empty(t, c.NamesFor("cloudify-gcp-plugin"))

	vpc, ok := c.Lookup("cloudify.nodes.aws.ec2.Vpc")
	require.True(t, ok)
	assert.Equal(t, "cloudify-aws-plugin", vpc.Plugin)
	assert.Equal(t, "3.0.0", vpc.Version)

	restored, err := c.Restore("cloudify-aws-plugin")
	require.NoError(t, err)
	assert.False(t, restored, "nothing to restore without a store")
}

func TestCacheReplacesPluginTypes(t *testing.T) {
	c := cache.New(nil, 0)
	require.NoError(t, c.Add(cache.Plugin{Name: "cloudify-aws-plugin", Version: "2.0"}, vpcTypes()))
	require.NoError(t, c.Add(cache.Plugin{Name: "cloudify-aws-plugin", Version: "3.0"}, vpcTypes()[1:]))

	assert.False(t, c.Has("cloudify.nodes.aws.ec2.Vpc"))
	assert.Equal(t, []string{"cloudify.nodes.aws.ec2.Subnet"}, c.NamesFor("cloudify-aws-plugin"))
}

func TestStoreRoundTrip(t *testing.T) {
	s := openStore(t)
	fetched := time.Unix(1700000000, 0)
	require.NoError(t, s.PutPlugin(cache.Plugin{Name: "cloudify-aws-plugin", Version: "3.0.0", FetchedAt: fetched}, vpcTypes()))

	p, types, err := s.LoadPlugin("cloudify-aws-plugin")
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", p.Version)
	assert.True(t, p.FetchedAt.Equal(fetched))
	require.Len(t, types, 2)
	assert.Equal(t, "cloudify.nodes.aws.ec2.Subnet", types[0].Type)
	assert.Equal(t, "cloudify.nodes.aws.ec2.Vpc", types[1].Type)
	assert.Equal(t, "boolean", types[1].Properties["use_external_resource"]["type"])

	plugins, err := s.Plugins()
	require.NoError(t, err)
	require.Len(t, plugins, 1)

	require.NoError(t, s.DeletePlugin("cloudify-aws-plugin"))
	_, _, err = s.LoadPlugin("cloudify-aws-plugin")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestStoreClosed(t *testing.T) {
	s, err := cache.OpenStore(filepath.Join(t.TempDir(), "types.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Plugins()
	assert.ErrorIs(t, err, cache.ErrStoreClosed)
}

func TestCacheRestore(t *testing.T) {
	s := openStore(t)
	writer := cache.New(s, time.Hour)
	require.NoError(t, writer.Add(cache.Plugin{Name: "cloudify-aws-plugin", Version: "3.0.0"}, vpcTypes()))

	reader := cache.New(s, time.Hour)
	ok, err := reader.Restore("cloudify-aws-plugin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, reader.Has("cloudify.nodes.aws.ec2.Vpc"))

	ok, err = reader.Restore("cloudify-gcp-plugin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRestoreStale(t *testing.T) {
	s := openStore(t)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.PutPlugin(cache.Plugin{Name: "cloudify-aws-plugin", Version: "1.0", FetchedAt: old}, vpcTypes()))

	c := cache.New(s, 24*time.Hour)
	ok, err := c.Restore("cloudify-aws-plugin")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.Imported("cloudify-aws-plugin"))
}

func TestSkeleton(t *testing.T) {
	vpc := vpcTypes()[0]
	assert.Equal(t, map[string]any{
		"use_external_resource": false,
		"resource_config":       map[string]any{"CidrBlock": ""},
	}, vpc.Skeleton())
	assert.Equal(t, []string{"resource_config", "use_external_resource"}, vpc.PropertyNames())

	_, ok := cache.Property{"default": nil}.Default()
	assert.False(t, ok)
}
