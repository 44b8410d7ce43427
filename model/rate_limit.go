package model

import "time"

// RateLimitConfig bounds how often one identity may hit an endpoint type.
type RateLimitConfig struct {
	EndpointType string        `json:"endpoint_type"`
	MaxRequests  int           `json:"max_requests"`
	WindowSize   time.Duration `json:"window_size"`
	Description  string        `json:"description"`
}
