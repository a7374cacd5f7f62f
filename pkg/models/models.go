package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status   string    `json:"status" example:"healthy" doc:"Service health status"`
		Version  string    `json:"version" example:"1.0.0" doc:"API version"`
		Sessions int       `json:"sessions" doc:"Open recording sessions"`
		Time     time.Time `json:"time" doc:"Current server time"`
	}
}

// FitWindow is a user selected range on the position axis (nm). A nil
// *FitWindow means no window has been entered; zero is a valid bound.
type FitWindow struct {
	Start float64 `json:"start" doc:"Window start (nm)"`
	End   float64 `json:"end" doc:"Window end (nm)"`
}

// EmptyResponse is returned by operations without a body
type EmptyResponse struct{}
