// Package models defines the request and response types for the API.
package models

// ScoreQuery is the query string accepted by GET /walkscore.
// Values are forwarded as given; only presence is checked.
type ScoreQuery struct {
	Lat     string `validate:"required"`
	Lon     string `validate:"required"`
	Address string `validate:"required"`
}

// ---- Response Types ----

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
