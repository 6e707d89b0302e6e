// Package importables lists the local YAML files a blueprint can import: the
// *.yaml files in the imports directory next to it.
package importables

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"
)

// Dir is the directory, relative to the blueprint, that holds importables.
const Dir = "imports"

var log = commonlog.GetLogger("cloudify-ls.importables")

// Lister caches the importables of each directory until the watcher reports
// a change in it.
type Lister struct {
	mu      sync.Mutex
	entries map[string][]string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New returns a Lister. When no watcher can be created listings are not
// cached.
func New() *Lister {
	l := &Lister{entries: make(map[string][]string), done: make(chan struct{})}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warningf("importables will not be cached: %s", err)
		close(l.done)
		return l
	}
	l.watcher = w
	go l.watch()
	return l
}

func (l *Lister) watch() {
	defer close(l.done)
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			dir := filepath.Dir(event.Name)
			log.Debugf("%s %s, dropping listing of %s", event.Op, event.Name, dir)
			l.invalidate(dir)
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				l.invalidate(event.Name)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %s", err)
		}
	}
}

func (l *Lister) invalidate(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, dir)
}

// List returns the importables of the blueprint at path as import strings
// such as "imports/network.yaml", sorted.
func (l *Lister) List(blueprintPath string) []string {
	dir := filepath.Join(filepath.Dir(blueprintPath), Dir)

	l.mu.Lock()
	cached, ok := l.entries[dir]
	l.mu.Unlock()
	if ok {
		return cached
	}

	if l.watcher == nil {
		return scan(dir)
	}
	if err := l.watcher.Add(dir); err != nil {
		// nothing to watch; a missing directory is listed again next time
		log.Debugf("not watching %s: %s", dir, err)
		return scan(dir)
	}

	// scanning under the lock makes a change seen while scanning drop the
	// fresh listing again
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := scan(dir)
	l.entries[dir] = entries
	return entries
}

// Close stops the watcher.
func (l *Lister) Close() error {
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	<-l.done
	return err
}

func scan(dir string) []string {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		if !isYAMLMapping(filepath.Join(dir, f.Name())) {
			continue
		}
		out = append(out, Dir+"/"+f.Name())
	}
	slices.Sort(out)
	return out
}

// isYAMLMapping reports whether the file holds a YAML document whose top
// level is a mapping, which every importable blueprint fragment is.
func isYAMLMapping(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return false
	}
	return len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode
}
