package models

import "time"

const (
	LabelChurn   = "churn"
	LabelNoChurn = "no_churn"
)

// Prediction is the outcome of scoring one CustomerInput.
type Prediction struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"request_id,omitempty"`
	Probability float64        `json:"probability"`
	Threshold   float64        `json:"threshold"`
	Churn       bool           `json:"churn"`
	Label       string         `json:"label"`
	Message     string         `json:"message"`
	Model       string         `json:"model"`
	Cached      bool           `json:"cached,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Input       *CustomerInput `json:"input,omitempty"`
	Features    []float64      `json:"features,omitempty"`
}

// BatchRow is the per-row result of batch scoring. Exactly one of
// Prediction and Error is set.
type BatchRow struct {
	Row        int         `json:"row"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// BatchResult summarizes a batch scoring run.
type BatchResult struct {
	Total   int        `json:"total"`
	Scored  int        `json:"scored"`
	Failed  int        `json:"failed"`
	Churned int        `json:"churned"`
	Rows    []BatchRow `json:"rows"`
}

// ScoringRequest is the Kafka message schema for asynchronous scoring.
type ScoringRequest struct {
	RequestID string        `json:"request_id"`
	Customer  CustomerInput `json:"customer"`
}

// RecentRequest is the query for listing logged predictions.
type RecentRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
