// Package graphview turns relationship-graph snapshots into deterministic
// 2D layouts for the dashboard. The snapshot is fetched from the graph store
// on an interval; the event stream only signals that it changed.
package graphview

import (
	"encoding/json"
	"fmt"
)

// Node labels partition the graph into layout roles.
const (
	LabelSubject  = "Person"
	LabelResource = "Service"
	LabelOutcome  = "Negotiation"
)

// Node is one graph node as returned by the snapshot query. Properties are
// stringified by the store.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

// NodeRef is a link endpoint. Upstream layout libraries mutate link objects
// in place, so a ref arrives either as a bare id string or as an embedded
// node object; both decode to the id here, at the ingestion boundary, so the
// layout algorithm only ever sees ids.
type NodeRef string

// UnmarshalJSON accepts "abc" and {"id": "abc", ...} ref forms.
func (r *NodeRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = NodeRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("graphview: link endpoint is neither id nor node: %w", err)
	}
	*r = NodeRef(obj.ID)
	return nil
}

// Link is one graph edge. Source and Target are normalized to node ids.
type Link struct {
	Source     NodeRef           `json:"source"`
	Target     NodeRef           `json:"target"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// Snapshot is the full graph at a point in time. Every fetch is a full
// replace; there is no delta form.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}
