package blueprint

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("cloudify-ls.blueprint")

// guard runs one classifier or walk step. A step that trips over a malformed
// node reports "does not apply" instead of taking the whole resolution down.
func guard[T any](name string, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("%s skipped: %v", name, r)
			var zero T
			out = zero
		}
	}()
	return fn()
}
