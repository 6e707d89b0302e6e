package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/time/rate"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/sitteradapter"
)

var log = commonlog.GetLogger("cloudify-ls.manager")

// ErrNoDocument is returned for a URI that is not open.
var ErrNoDocument = errors.New("manager: document not open")

// trackedSections are the sections whose changes trigger follow-up work.
var trackedSections = []string{registry.Imports, registry.Inputs, registry.NodeTemplates}

// Projection is what the last refresh of a document saw. Each section's
// part is replaced only when that section changed.
type Projection struct {
	Inputs        []string
	NodeTemplates []string
	Plugins       []blueprint.Import
	Section       string
	Path          string
}

// docContext is the state kept for one open document.
type docContext struct {
	mu      sync.Mutex
	text    string
	version int32
	tracker *blueprint.Tracker
	limiter *rate.Limiter
	last    Projection
}

// DocumentManager holds every open document and parses on demand.
type DocumentManager struct {
	mu      sync.Mutex
	docs    map[string]*docContext
	parsers *parser.ParserPool
	refresh rate.Limit
}

// NewDocumentManager creates a DocumentManager. Refreshes of one document
// are at least refreshInterval apart; zero disables the throttle.
func NewDocumentManager(parsers *parser.ParserPool, refreshInterval time.Duration) *DocumentManager {
	limit := rate.Inf
	if refreshInterval > 0 {
		limit = rate.Every(refreshInterval)
	}
	return &DocumentManager{
		docs:    make(map[string]*docContext),
		parsers: parsers,
		refresh: limit,
	}
}

// Open starts tracking uri with its full text.
func (dm *DocumentManager) Open(uri, text string, version int32) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.docs[uri] = &docContext{
		text:    text,
		version: version,
		tracker: blueprint.NewTracker(),
		limiter: rate.NewLimiter(dm.refresh, 1),
	}
}

func (dm *DocumentManager) get(uri string) (*docContext, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	c, ok := dm.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, uri)
	}
	return c, nil
}

// ApplyChanges applies didChange content changes in order.
func (dm *DocumentManager) ApplyChanges(uri string, version int32, changes []any) error {
	c, err := dm.get(uri)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.text
	for _, change := range changes {
		if text, err = sitteradapter.ApplyChange(text, change); err != nil {
			return fmt.Errorf("failed to apply change to %s: %w", uri, err)
		}
	}
	c.text, c.version = text, version
	return nil
}

// Text returns the current text of uri.
func (dm *DocumentManager) Text(uri string) (string, error) {
	c, err := dm.get(uri)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

// Release forgets uri.
func (dm *DocumentManager) Release(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.docs, uri)
}

// URIs lists the open documents, sorted.
func (dm *DocumentManager) URIs() []string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	uris := make([]string, 0, len(dm.docs))
	for uri := range dm.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// Snapshot is a parsed view of a document at one moment.
type Snapshot struct {
	URI  string
	Doc  *document.Document
	Tree *parser.Tree
}

// Snapshot parses the current text of uri. A parse failure leaves Tree nil;
// the document is still usable.
func (dm *DocumentManager) Snapshot(ctx context.Context, uri string) (*Snapshot, error) {
	text, err := dm.Text(uri)
	if err != nil {
		return nil, err
	}
	doc := document.New(text)
	tree, err := dm.parsers.Parse(ctx, []byte(doc.Text()))
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		log.Warningf("could not parse %s: %s", uri, err)
	}
	return &Snapshot{URI: uri, Doc: doc, Tree: tree}, nil
}

// Resolution is a resolved cursor together with what the document's
// refresh noticed.
type Resolution struct {
	blueprint.Result
	Doc *document.Document

	// Changed lists the tracked sections that differ from the previous
	// refresh. It is empty when the refresh was throttled.
	Changed []string
	// Projection is the state of the latest refresh, possibly an older one.
	Projection Projection
}

// Resolve resolves an LSP cursor position in uri and refreshes the
// document's snapshot state unless a refresh happened too recently.
func (dm *DocumentManager) Resolve(ctx context.Context, uri string, pos protocol.Position, types blueprint.TypeIndex) (*Resolution, error) {
	snap, err := dm.Snapshot(ctx, uri)
	if err != nil {
		return nil, err
	}
	c, err := dm.get(uri)
	if err != nil {
		return nil, err
	}

	res := blueprint.Resolve(snap.Doc, snap.Tree, sitteradapter.ToDocument(snap.Doc, pos), types)
	r := &Resolution{Result: res, Doc: snap.Doc}

	c.mu.Lock()
	defer c.mu.Unlock()
	if res.Parsed && c.limiter.Allow() {
		r.Changed = c.refresh(res, snap.Tree.HasErrors)
		if len(r.Changed) > 0 {
			log.Debugf("%s: changed sections %v", uri, r.Changed)
		}
	}
	r.Projection = c.last
	return r, nil
}

// refresh diffs the tracked sections of res against the last refresh and
// updates the projection of those that changed. A tree with errors may have
// lost a whole section, so a section missing from it keeps what the last
// clean parse saw. The caller holds c.mu.
func (c *docContext) refresh(res blueprint.Result, hasErrors bool) []string {
	var changed []string
	for _, name := range trackedSections {
		raw := res.Raw(name)
		if raw == "" && hasErrors {
			continue
		}
		if c.tracker.Diff(name, raw) {
			changed = append(changed, name)
		}
	}
	if slices.Contains(changed, registry.Imports) {
		c.last.Plugins = res.Plugins
	}
	if slices.Contains(changed, registry.Inputs) {
		c.last.Inputs = res.Inputs
	}
	if slices.Contains(changed, registry.NodeTemplates) {
		c.last.NodeTemplates = res.NodeTemplates
	}
	c.last.Section = res.Section
	c.last.Path = res.YAMLPath()
	return changed
}

// Projection returns the state of the latest refresh of uri.
func (dm *DocumentManager) Projection(uri string) (Projection, error) {
	c, err := dm.get(uri)
	if err != nil {
		return Projection{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, nil
}
