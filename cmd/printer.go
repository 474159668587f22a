package cmd

import (
	"fmt"
	"io"
	"strings"
)

// streamPrinter redraws the latest visible text of a turn on a terminal that
// can only append: it prints what was added since the previous update.
type streamPrinter struct {
	out     io.Writer
	printed string
}

func newStreamPrinter(out io.Writer) *streamPrinter {
	return &streamPrinter{out: out}
}

func (p *streamPrinter) Show(visible string) {
	if rest, ok := strings.CutPrefix(visible, p.printed); ok {
		fmt.Fprint(p.out, rest)
	} else {
		fmt.Fprint(p.out, "\n"+visible)
	}
	p.printed = visible
}

func (p *streamPrinter) Done() {
	if p.printed != "" {
		fmt.Fprintln(p.out)
	}
}
