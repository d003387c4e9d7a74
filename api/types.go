package api

import (
	"import-cost/adapters/quote"
	"import-cost/core/output"
	"import-cost/core/types"
)

// ProductRequest is the body of POST /products. Omitted quantity and weight
// take the add-product defaults; an empty body adds a default product.
type ProductRequest struct {
	Price    string        `json:"price"`
	Quantity *quote.Number `json:"quantity,omitempty"`
	Weight   *quote.Number `json:"weight,omitempty"`
}

// UpdateRequest is the body of PATCH /products/{id}
type UpdateRequest struct {
	Field string       `json:"field" validate:"required,oneof=price quantity weight"`
	Value quote.Number `json:"value"`
}

// ConfigRequest is the body of PUT /config. Absent fields are left as they
// are; an empty ICMS rate restores the default.
type ConfigRequest struct {
	ExchangeRate *quote.Number `json:"exchange_rate,omitempty"`
	ICMSRate     *quote.Number `json:"icms_rate,omitempty"`
}

// ProductResponse answers product edits
type ProductResponse struct {
	Product types.ProductEntry `json:"product"`
	SnapshotResponse
}

// SnapshotResponse carries the latest result of the session
type SnapshotResponse struct {
	SessionID string                   `json:"session_id"`
	Stale     bool                     `json:"stale"`
	Result    *types.CalculationResult `json:"result"`
}

// ConfigResponse describes the applied configuration
type ConfigResponse struct {
	ExchangeRate string `json:"exchange_rate"`
	ICMSRate     string `json:"icms_rate"`
	ICMSDefault  bool   `json:"icms_default"`
}

// EstimateResponse answers POST /estimate
type EstimateResponse struct {
	*output.Report
	InputHash  string `json:"input_hash"`
	RequestID  string `json:"request_id"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorBody is the error envelope
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`

	// Result is the last good result when an edit was applied but
	// recalculation was blocked
	Result *types.CalculationResult `json:"result,omitempty"`
}
