package sat

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-logr/logr"

	"github.com/xgqt/opensmt/pkg/term"
)

type SearchPosition interface {
	Roots() []string
	Model() map[term.Term]bool
	Conflicts() []Conflict
}

type Tracer interface {
	Trace(p SearchPosition)
}

type position struct {
	roots     []string
	model     map[term.Term]bool
	conflicts []Conflict
}

func (p position) Roots() []string           { return p.roots }
func (p position) Model() map[term.Term]bool { return p.model }
func (p position) Conflicts() []Conflict     { return p.conflicts }

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nRoots:\n")
	for _, r := range p.Roots() {
		fmt.Fprintf(t.Writer, "- %s\n", r)
	}
	fmt.Fprintf(t.Writer, "True atoms: %d\n", countTrue(p.Model()))
	fmt.Fprintf(t.Writer, "Conflicts:\n")
	for _, a := range p.Conflicts() {
		fmt.Fprintf(t.Writer, "- %s\n", a)
	}
}

// LogrTracer reports every search outcome as a structured log entry.
type LogrTracer struct {
	Log logr.Logger
}

func (t LogrTracer) Trace(p SearchPosition) {
	conflicts := make([]string, len(p.Conflicts()))
	for i, c := range p.Conflicts() {
		conflicts[i] = c.String()
	}
	sort.Strings(conflicts)
	t.Log.Info("search position", "roots", p.Roots(), "trueAtoms", countTrue(p.Model()), "conflicts", conflicts)
}

func countTrue(m map[term.Term]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
