package main

import (
	"fmt"
	"io"

	"github.com/nao1215/pixelaudit/internal/model"
)

// progress prints a single updating counter line. The dispatcher serializes
// outcome hook calls, so no locking is needed.
type progress struct {
	w      io.Writer
	done   int
	failed int
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

// record is the dispatcher outcome hook.
func (p *progress) record(o model.ProbeOutcome) {
	p.done++
	if o.Failed() {
		p.failed++
	}
	fmt.Fprintf(p.w, "\rprobed %d pixel(s), %d failed", p.done, p.failed)
}

// finish ends the counter line.
func (p *progress) finish() {
	if p.done > 0 {
		fmt.Fprintln(p.w)
	}
}
