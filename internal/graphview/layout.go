package graphview

// Anchor-and-band layout constants, tuned for a ~900px canvas. The layout is
// role-based rather than force-directed so recomputing over an unchanged
// snapshot yields bit-identical positions and nodes never jitter between
// refreshes.
const (
	anchorX = 420.0
	anchorY = 90.0

	resourceBandDY = 170.0
	resourceGap    = 180.0

	outcomeDX      = 80.0
	outcomeDY      = 140.0
	outcomeStagger = 42.0

	fallbackBandDY      = 310.0
	fallbackBandStagger = 140.0
)

// PositionedNode is a node augmented with layout coordinates and an activity
// cue for rendering.
type PositionedNode struct {
	Node
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Active bool    `json:"active"`
}

// PositionedEdge is a renderable edge with resolved endpoint coordinates.
// Cancelled edges render dashed with the label overridden.
type PositionedEdge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Type      string  `json:"type"`
	Label     string  `json:"label"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Cancelled bool    `json:"cancelled"`
}

// Layout is the positioned rendering of one snapshot.
type Layout struct {
	Nodes []PositionedNode `json:"nodes"`
	Edges []PositionedEdge `json:"edges"`
}

// ComputeLayout derives a deterministic layout from the snapshot. An empty
// node set yields an empty layout; links whose endpoints are missing from
// the positioned node set are dropped, never an error.
func ComputeLayout(snap Snapshot) Layout {
	var subjects, resources, outcomes []Node
	for _, n := range snap.Nodes {
		switch n.Label {
		case LabelSubject:
			subjects = append(subjects, n)
		case LabelResource:
			resources = append(resources, n)
		case LabelOutcome:
			outcomes = append(outcomes, n)
		}
	}

	positioned := make(map[string]*PositionedNode)
	var order []string
	place := func(n Node, x, y float64, active bool) {
		if _, dup := positioned[n.ID]; dup {
			return // node ids are unique per contract; first placement wins
		}
		positioned[n.ID] = &PositionedNode{Node: n, X: x, Y: y, Active: active}
		order = append(order, n.ID)
	}

	// Subject at the fixed anchor. Extra subject nodes stack beside it.
	for i, n := range subjects {
		place(n, anchorX+float64(i)*resourceGap, anchorY, false)
	}

	// Resources evenly spaced on a band, centered under the anchor.
	bandY := anchorY + resourceBandDY
	for i, n := range resources {
		x := anchorX + (float64(i)-float64(len(resources)-1)/2)*resourceGap
		place(n, x, bandY, rateChanged(n))
	}

	// Outcomes hang off the resource they attach to; otherwise a fallback
	// band further down, staggered so nodes never overlap exactly.
	for i, n := range outcomes {
		if res, ok := attachedResource(n.ID, snap.Links, positioned); ok {
			place(n, res.X+outcomeDX+float64(i)*outcomeStagger, res.Y+outcomeDY, true)
		} else {
			place(n, anchorX+float64(i)*fallbackBandStagger, bandY+fallbackBandDY, true)
		}
	}

	layout := Layout{}
	for _, id := range order {
		layout.Nodes = append(layout.Nodes, *positioned[id])
	}

	// Edge list: endpoints already normalized to ids by NodeRef; dangling
	// edges are dropped here.
	seen := make(map[string]struct{})
	for _, l := range snap.Links {
		src, okS := positioned[string(l.Source)]
		dst, okT := positioned[string(l.Target)]
		if !okS || !okT {
			continue
		}
		key := string(l.Source) + "\x00" + string(l.Target) + "\x00" + l.Type
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		cancelled := l.Properties["status"] == "cancelled"
		label := l.Type
		if cancelled {
			label = "cancelled"
		}
		layout.Edges = append(layout.Edges, PositionedEdge{
			Source:    string(l.Source),
			Target:    string(l.Target),
			Type:      l.Type,
			Label:     label,
			X1:        src.X,
			Y1:        src.Y,
			X2:        dst.X,
			Y2:        dst.Y,
			Cancelled: cancelled,
		})
	}
	return layout
}

// rateChanged reports whether a resource node's current rate differs from
// its previously recorded rate, the "this just changed" cue.
func rateChanged(n Node) bool {
	prev, hasPrev := n.Properties["previousRate"]
	cur, hasCur := n.Properties["monthlyRate"]
	return hasPrev && hasCur && prev != cur
}

// attachedResource finds a positioned resource node connected to the outcome
// node by any link, in either direction.
func attachedResource(outcomeID string, links []Link, positioned map[string]*PositionedNode) (*PositionedNode, bool) {
	for _, l := range links {
		var other string
		switch outcomeID {
		case string(l.Source):
			other = string(l.Target)
		case string(l.Target):
			other = string(l.Source)
		default:
			continue
		}
		if p, ok := positioned[other]; ok && p.Label == LabelResource {
			return p, true
		}
	}
	return nil, false
}
