package heap

import (
	"time"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/logger"
)

// OOMHandler is called when an Alloc cannot be satisfied. It must not
// return.
type OOMHandler func(l arena.Layout, err error)

// PanicOnOOM logs the failed request and panics with the exhaustion error.
func PanicOnOOM(l arena.Layout, err error) {
	logger.Error("heap: out of memory", "size", l.Size, "align", l.Align, "error", err)
	panic(err)
}

// HaltOnOOM logs the failed request and parks the calling goroutine forever.
// The process stops making progress instead of continuing with a bad
// pointer.
func HaltOnOOM(l arena.Layout, err error) {
	logger.Error("heap: out of memory, halting", "size", l.Size, "align", l.Align, "error", err)
	park()
}

// park idles forever without tripping the runtime deadlock detector.
var park = func() {
	for {
		time.Sleep(time.Hour)
	}
}
