package render

import (
	"fmt"

	"github.com/nao1215/scanreport/internal/payload"
)

// Invoke runs f and converts a panic into an ErrFormatterPanic error, so a
// faulty formatter only loses its own section of a report.
func Invoke(f Formatter, p payload.Value, ctx *Context) (frag Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frag = ""
			err = fmt.Errorf("%w: plugin %q: %v", ErrFormatterPanic, ctx.Plugin, r)
		}
	}()
	return f.Render(p, ctx)
}
