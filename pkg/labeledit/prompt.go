package labeledit

import (
	"github.com/matzehuels/graphedit/pkg/errors"
)

// EdgePrompt is a modal text prompt for an edge label. Opening it returns
// the seed value; the caller later commits or cancels. Nothing blocks while
// the prompt is open.
type EdgePrompt struct {
	store  Store
	edgeID string
	open   bool
}

// NewEdgePrompt returns a closed prompt writing to s.
func NewEdgePrompt(s Store) *EdgePrompt {
	return &EdgePrompt{store: s}
}

// Open opens the prompt for edgeID and returns its current label. Opening
// replaces any prompt already open.
func (p *EdgePrompt) Open(edgeID string) (string, error) {
	g := p.store.Snapshot()
	e, ok := g.Edge(edgeID)
	if !ok {
		return "", errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", edgeID)
	}
	p.edgeID, p.open = edgeID, true
	return e.Label, nil
}

// Pending returns the edge the prompt is open for.
func (p *EdgePrompt) Pending() (string, bool) {
	return p.edgeID, p.open
}

// Commit accepts value as the new label and closes the prompt.
func (p *EdgePrompt) Commit(value string) error {
	if !p.open {
		return errors.New(errors.ErrCodeNotEditing, "no edge label prompt is open")
	}
	id := p.edgeID
	p.edgeID, p.open = "", false
	return p.store.SetEdgeLabel(id, value)
}

// CommitFor is Commit guarded by the edge id: it fails with NOT_EDITING and
// leaves the prompt as it is unless the prompt is open for edgeID.
func (p *EdgePrompt) CommitFor(edgeID, value string) error {
	if err := p.expect(edgeID); err != nil {
		return err
	}
	return p.Commit(value)
}

// CancelFor is Cancel guarded by the edge id.
func (p *EdgePrompt) CancelFor(edgeID string) error {
	if err := p.expect(edgeID); err != nil {
		return err
	}
	return p.Cancel()
}

// Prune closes the prompt if its edge is no longer in the store.
func (p *EdgePrompt) Prune() bool {
	if !p.open {
		return false
	}
	g := p.store.Snapshot()
	if _, ok := g.Edge(p.edgeID); ok {
		return false
	}
	p.edgeID, p.open = "", false
	return true
}

func (p *EdgePrompt) expect(edgeID string) error {
	if !p.open || p.edgeID != edgeID {
		return errors.New(errors.ErrCodeNotEditing, "no label prompt is open for edge %s", edgeID)
	}
	return nil
}

// Cancel closes the prompt leaving the label unchanged.
func (p *EdgePrompt) Cancel() error {
	if !p.open {
		return errors.New(errors.ErrCodeNotEditing, "no edge label prompt is open")
	}
	p.edgeID, p.open = "", false
	return nil
}
