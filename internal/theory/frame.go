package theory

import (
	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/pkg/term"
)

// Frame holds the formulas asserted between two pushes. Root is the
// conjunction handed to search once a plugin has simplified the frame.
type Frame struct {
	Formulas   []term.Term
	Root       term.Term
	simplified bool
}

// Simplified reports whether a plugin already rewrote the frame.
func (f *Frame) Simplified() bool {
	return f.simplified
}

// FrameStore keeps the frames of a session in push order. There is
// always at least one frame.
type FrameStore struct {
	frames []*Frame
}

func NewFrameStore() *FrameStore {
	return &FrameStore{frames: []*Frame{{}}}
}

// Push opens a new frame and returns its index.
func (fs *FrameStore) Push() int {
	fs.frames = append(fs.frames, &Frame{})
	return len(fs.frames) - 1
}

// Add appends t to the current frame. A frame that was already
// simplified is reopened so its root is rebuilt with t.
func (fs *FrameStore) Add(t term.Term) {
	f := fs.frames[len(fs.frames)-1]
	f.Formulas = append(f.Formulas, t)
	f.simplified = false
}

// Current returns the index of the innermost frame.
func (fs *FrameStore) Current() int {
	return len(fs.frames) - 1
}

// Len returns the number of frames.
func (fs *FrameStore) Len() int {
	return len(fs.frames)
}

// Frame returns frame i.
func (fs *FrameStore) Frame(i int) *Frame {
	invariant.Check(i >= 0 && i < len(fs.frames), "no frame %d", i)
	return fs.frames[i]
}

// Collate returns the conjunction of the formulas of frame i.
func (fs *FrameStore) Collate(pool *term.Pool, i int) term.Term {
	return pool.MkAnd(fs.Frame(i).Formulas...)
}

// Roots returns the root of every simplified frame, outermost first.
func (fs *FrameStore) Roots() []term.Term {
	roots := make([]term.Term, 0, len(fs.frames))
	for _, f := range fs.frames {
		if f.simplified {
			roots = append(roots, f.Root)
		}
	}
	return roots
}
