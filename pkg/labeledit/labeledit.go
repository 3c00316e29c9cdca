// Package labeledit implements inline label editing.
//
// A node label moves between two states. In [Viewing] the committed label
// from the store is displayed. A double-click moves the node to [Editing]
// with a private buffer seeded from the committed label. Enter or losing
// focus commits the buffer by issuing a set-label command against the store;
// Escape discards it. The editor never holds a reference into store data.
//
// A [Session] allows a single node to edit at a time. Edge labels use the
// non-blocking [EdgePrompt] instead of an inline editor.
package labeledit

import (
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
)

// State is the editing state of a node label.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Store is the subset of the graph store used for label edits.
type Store interface {
	Snapshot() graph.Graph
	SetNodeLabel(id, label string) error
	SetEdgeLabel(id, label string) error
}

// Editor is the state machine of one node.
type Editor struct {
	NodeID string
	state  State
	buffer string
}

// NewEditor returns an editor for nodeID in the Viewing state.
func NewEditor(nodeID string) *Editor {
	return &Editor{NodeID: nodeID}
}

// State returns the current state.
func (e *Editor) State() State { return e.state }

// Buffer returns the edit buffer. It is empty while Viewing.
func (e *Editor) Buffer() string { return e.buffer }

// Begin enters Editing with the buffer seeded from committed. Beginning
// while already Editing keeps the current buffer.
func (e *Editor) Begin(committed string) {
	if e.state == Editing {
		return
	}
	e.state = Editing
	e.buffer = committed
}

// Input replaces the buffer.
func (e *Editor) Input(text string) error {
	if e.state != Editing {
		return errors.New(errors.ErrCodeNotEditing, "node %s is not being edited", e.NodeID)
	}
	e.buffer = text
	return nil
}

// Finish leaves Editing and returns the buffer to commit.
func (e *Editor) Finish() (string, error) {
	if e.state != Editing {
		return "", errors.New(errors.ErrCodeNotEditing, "node %s is not being edited", e.NodeID)
	}
	v := e.buffer
	e.state, e.buffer = Viewing, ""
	return v, nil
}

// Discard leaves Editing without committing.
func (e *Editor) Discard() error {
	if e.state != Editing {
		return errors.New(errors.ErrCodeNotEditing, "node %s is not being edited", e.NodeID)
	}
	e.state, e.buffer = Viewing, ""
	return nil
}

// Display returns the value shown for the node given its committed label.
func (e *Editor) Display(committed string) string {
	if e.state == Editing {
		return e.buffer
	}
	if committed == "" {
		return graph.PlaceholderLabel
	}
	return committed
}

// Session tracks the single node currently being edited.
type Session struct {
	store  Store
	active *Editor
}

// NewSession returns a session committing labels to s.
func NewSession(s Store) *Session {
	return &Session{store: s}
}

// Active returns the node being edited and its buffer.
func (s *Session) Active() (nodeID, buffer string, ok bool) {
	if s.active == nil {
		return "", "", false
	}
	return s.active.NodeID, s.active.Buffer(), true
}

// Begin starts editing nodeID and returns the seeded buffer. A different
// node still being edited loses focus first, which commits its buffer.
func (s *Session) Begin(nodeID string) (string, error) {
	g := s.store.Snapshot()
	n, ok := g.Node(nodeID)
	if !ok {
		return "", errors.New(errors.ErrCodeNodeNotFound, "node %s not found", nodeID)
	}
	if s.active != nil {
		if s.active.NodeID == nodeID {
			return s.active.Buffer(), nil
		}
		if err := s.Blur(s.active.NodeID); err != nil && !errors.Is(err, errors.ErrCodeNodeNotFound) {
			return "", err
		}
	}
	ed := NewEditor(nodeID)
	ed.Begin(n.Label())
	s.active = ed
	return ed.Buffer(), nil
}

// Input replaces the buffer of the node being edited.
func (s *Session) Input(nodeID, text string) error {
	ed, err := s.editor(nodeID)
	if err != nil {
		return err
	}
	return ed.Input(text)
}

// Enter commits the buffer.
func (s *Session) Enter(nodeID string) error { return s.commit(nodeID) }

// Blur commits the buffer. Losing focus and pressing Enter are equivalent.
func (s *Session) Blur(nodeID string) error { return s.commit(nodeID) }

// Escape discards the buffer; the committed label is unchanged.
func (s *Session) Escape(nodeID string) error {
	ed, err := s.editor(nodeID)
	if err != nil {
		return err
	}
	s.active = nil
	return ed.Discard()
}

// Cancel abandons any edit in progress without committing.
func (s *Session) Cancel() {
	s.active = nil
}

// Prune abandons the edit in progress if its node is no longer in the
// store. It reports whether an edit was dropped.
func (s *Session) Prune() bool {
	if s.active == nil {
		return false
	}
	g := s.store.Snapshot()
	if _, ok := g.Node(s.active.NodeID); ok {
		return false
	}
	s.active = nil
	return true
}

// Display returns the value shown for nodeID.
func (s *Session) Display(nodeID string) string {
	g := s.store.Snapshot()
	n, _ := g.Node(nodeID)
	if s.active != nil && s.active.NodeID == nodeID {
		return s.active.Display(n.Label())
	}
	return n.DisplayLabel()
}

func (s *Session) commit(nodeID string) error {
	ed, err := s.editor(nodeID)
	if err != nil {
		return err
	}
	s.active = nil
	v, err := ed.Finish()
	if err != nil {
		return err
	}
	return s.store.SetNodeLabel(nodeID, v)
}

func (s *Session) editor(nodeID string) (*Editor, error) {
	if s.active == nil || s.active.NodeID != nodeID {
		return nil, errors.New(errors.ErrCodeNotEditing, "node %s is not being edited", nodeID)
	}
	return s.active, nil
}
