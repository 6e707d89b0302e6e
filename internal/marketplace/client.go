// Package marketplace fetches plugin node types from the Cloudify
// marketplace REST API.
package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tliron/commonlog"
	"golang.org/x/time/rate"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

const (
	DefaultURL      = "https://marketplace.cloudify.co"
	defaultPageSize = 500
	httpTimeout     = 30 * time.Second
)

var log = commonlog.GetLogger("cloudify-ls.marketplace")

var (
	// ErrPluginNotFound is returned when the marketplace does not know a
	// plugin or has no versions of it.
	ErrPluginNotFound = errors.New("marketplace: plugin not found")

	// ErrInvalidPlugin is returned for names that cannot be Cloudify plugins.
	ErrInvalidPlugin = errors.New("marketplace: invalid plugin name")
)

type pagination struct {
	Size   int `json:"size"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type page[T any] struct {
	Items      []T        `json:"items"`
	Pagination pagination `json:"pagination"`
}

type pluginItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type versionItem struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// Client talks to one marketplace. Requests are rate limited so that a burst
// of imports does not hammer the service.
type Client struct {
	base     string
	http     *http.Client
	limiter  *rate.Limiter
	PageSize int
}

// NewClient returns a client for the marketplace at base. A nil httpClient
// means one with a default timeout.
func NewClient(base string, httpClient *http.Client) *Client {
	if base == "" {
		base = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		PageSize: defaultPageSize,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u := c.base + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// PluginID looks up the marketplace id of a plugin.
func (c *Client) PluginID(ctx context.Context, name string) (string, error) {
	var p page[pluginItem]
	if err := c.get(ctx, "plugins", url.Values{"name": {name}}, &p); err != nil {
		return "", err
	}
	if len(p.Items) == 0 || p.Items[0].ID == "" {
		return "", fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	return p.Items[0].ID, nil
}

// Versions lists the published versions of a plugin, oldest first.
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	id, err := c.PluginID(ctx, name)
	if err != nil {
		return nil, err
	}
	var p page[versionItem]
	if err := c.get(ctx, "plugins/"+url.PathEscape(id)+"/versions", nil, &p); err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Version != "" {
			versions = append(versions, item.Version)
		}
	}
	slices.SortFunc(versions, CompareVersions)
	return versions, nil
}

// LatestVersion returns the newest published version of a plugin.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	versions, err := c.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: %s has no versions", ErrPluginNotFound, name)
	}
	return versions[len(versions)-1], nil
}

// NodeTypes fetches the node types of a plugin version. An empty version or
// one that is not an exact release, such as a ">=2.0" constraint, means the
// latest. The version actually used is returned with the types.
func (c *Client) NodeTypes(ctx context.Context, plugin, version string) ([]cache.NodeType, string, error) {
	if !IsExactVersion(version) {
		latest, err := c.LatestVersion(ctx, plugin)
		if err != nil {
			return nil, "", err
		}
		version = latest
	}

	var types []cache.NodeType
	for offset := 0; ; {
		q := url.Values{
			"plugin_name":    {plugin},
			"plugin_version": {version},
			"offset":         {strconv.Itoa(offset)},
			"size":           {strconv.Itoa(c.PageSize)},
		}
		var p page[cache.NodeType]
		if err := c.get(ctx, "node-types", q, &p); err != nil {
			return nil, "", err
		}
		for _, t := range p.Items {
			if strings.HasPrefix(t.Type, registry.NodeTypePrefix) {
				types = append(types, t)
			}
		}
		offset += len(p.Items)
		if len(p.Items) == 0 || offset >= p.Pagination.Total {
			break
		}
	}
	log.Infof("fetched %d node types of %s %s", len(types), plugin, version)
	return types, version, nil
}

// IsExactVersion reports whether v names a single release such as "3.2.1".
func IsExactVersion(v string) bool {
	if v == "" || v == "latest" {
		return false
	}
	for _, part := range strings.Split(v, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// CompareVersions orders version strings the way a person would: runs of
// digits compare by value, everything else by text.
func CompareVersions(a, b string) int {
	ra, rb := runs(a), runs(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		if c := compareRun(ra[i], rb[i]); c != 0 {
			return c
		}
	}
	return len(ra) - len(rb)
}

func runs(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[i-1]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

func compareRun(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) - len(b)
		}
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
