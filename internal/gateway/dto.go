package gateway

import (
	"trading-advisor/internal/engine"
	"trading-advisor/internal/model"
)

// Frame types exchanged over the stream.
const (
	TypeAnalyze  = "analyze"
	TypeAnalysis = "analysis"
	TypeError    = "error"
)

// AnalyzeFrame is a client request. ID is echoed back so clients can
// correlate replies on a multiplexed connection.
type AnalyzeFrame struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	Symbol string         `json:"symbol"`
	Bars   []model.Bar    `json:"bars"`
	Engine *engine.Config `json:"engine,omitempty"`
}

// AnalysisFrame is a successful reply.
type AnalysisFrame struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	Symbol   string          `json:"symbol"`
	Bars     int             `json:"bars"`
	Analysis *model.Analysis `json:"analysis"`
}

// ErrorFrame is a failed reply. The connection stays open.
type ErrorFrame struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Error  string `json:"error"`
}
