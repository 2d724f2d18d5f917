package api

import (
	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/chain"
	"github.com/opsdeck/opsdeck/internal/event"
)

// ChainResponse wraps the derived reasoning-chain timeline.
type ChainResponse struct {
	Steps []chain.Step `json:"steps"`
	Total int          `json:"total"`
}

// HistoryResponse wraps the raw buffered event history.
type HistoryResponse struct {
	Events []event.Event `json:"events"`
	Total  int           `json:"total"`
}

// CallHistoryResponse wraps durable call log rows.
type CallHistoryResponse struct {
	Calls []calllog.CallRow `json:"calls"`
	Total int               `json:"total"`
}

// BillHistoryResponse wraps recorded bill scans.
type BillHistoryResponse struct {
	Bills []calllog.BillRow `json:"bills"`
	Total int               `json:"total"`
}

// ScenarioInfo is a summary of one loaded scenario.
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
}

// ScenarioListResponse wraps the loaded scenario set.
type ScenarioListResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}
