package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds. The editor currently knows a single variant.
const (
	KindCircular = "circular"
)

// EdgeTypeStraight is the edge type assigned to every synthesized edge.
const EdgeTypeStraight = "straight"

// Default labels.
const (
	DefaultNodeLabel = "New Node"
	DefaultEdgeLabel = "New Connection"

	// PlaceholderLabel is displayed for nodes whose committed label is empty.
	PlaceholderLabel = "Double-click to edit"
)

// ExportFilename is the default name offered for exported documents.
const ExportFilename = "graph-data.json"

// Handle identifiers of a circular node. Target handles receive
// connections, source handles emit them.
const (
	HandleTop    = "top"
	HandleBottom = "bottom"
	HandleLeft   = "left"
	HandleRight  = "right"

	HandleTopSource    = "top-source"
	HandleBottomSource = "bottom-source"
	HandleLeftSource   = "left-source"
	HandleRightSource  = "right-source"
)

// =============================================================================
// Graph
// =============================================================================

// Graph is the canonical document: ordered nodes followed by ordered edges.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Position is a point in graph (world) coordinates.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData holds the user-editable payload of a node.
type NodeData struct {
	Label string `json:"label" bson:"label"`
}

// Node is a single vertex on the canvas.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     string   `json:"type" bson:"type"`
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
	Selected bool     `json:"selected,omitempty" bson:"selected,omitempty"`
}

// Label returns the committed label.
func (n *Node) Label() string { return n.Data.Label }

// DisplayLabel returns the label, or the placeholder when it is empty.
func (n *Node) DisplayLabel() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	return PlaceholderLabel
}

// =============================================================================
// Edge
// =============================================================================

// Style is a free-form set of presentation properties such as "fill" or
// "fontWeight". Values are kept as decoded so that properties this package
// does not know about survive a load, import or export unchanged.
type Style map[string]any

// clone returns a deep copy of s.
func (s Style) clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return map[string]any(Style(v).clone())
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = cloneValue(x)
		}
		return out
	default:
		return v
	}
}

// Edge connects two nodes through optional handles.
type Edge struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	Target       string `json:"target" bson:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" bson:"source_handle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" bson:"target_handle,omitempty"`
	Label        string `json:"label" bson:"label"`
	Type         string `json:"type" bson:"type"`
	Selected     bool   `json:"selected,omitempty" bson:"selected,omitempty"`

	LabelStyle          Style     `json:"labelStyle,omitempty" bson:"label_style,omitempty"`
	LabelBgStyle        Style     `json:"labelBgStyle,omitempty" bson:"label_bg_style,omitempty"`
	LabelBgPadding      []float64 `json:"labelBgPadding,omitempty" bson:"label_bg_padding,omitempty"`
	LabelBgBorderRadius float64   `json:"labelBgBorderRadius,omitempty" bson:"label_bg_border_radius,omitempty"`
}

// Touches reports whether the edge has nodeID as source or target.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// ApplyDefaultStyle sets the label style used for freshly connected edges.
func (e *Edge) ApplyDefaultStyle() {
	e.LabelStyle = Style{"fill": "#e0e0e0", "fontWeight": float64(700)}
	e.LabelBgStyle = Style{"fill": "#1e1e1e"}
	e.LabelBgPadding = []float64{8, 4}
	e.LabelBgBorderRadius = 4
}

// clone returns a deep copy of e.
func (e Edge) clone() Edge {
	e.LabelStyle = e.LabelStyle.clone()
	e.LabelBgStyle = e.LabelBgStyle.clone()
	if e.LabelBgPadding != nil {
		e.LabelBgPadding = append([]float64(nil), e.LabelBgPadding...)
	}
	return e
}
