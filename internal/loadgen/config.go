// Package loadgen drives a running agrocast instance with randomized
// prediction requests and checks every response against the API contract.
package loadgen

import (
	"net/url"
	"time"
)

// Endpoints exercised by the generator.
const (
	EndpointIrrigation = "/predict-irrigation"
	EndpointYield      = "/predict-yield"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Requests int           // Number of requests to send
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // Per-request HTTP timeout
	Cities   []string      // Cities to pick from
	Verbose  bool          // Log every response
}

// Request is one generated call.
type Request struct {
	ID       string
	Endpoint string
	Params   url.Values
}

// Outcome classifies a verified response.
type Outcome string

const (
	OutcomeRecommendation     Outcome = "recommendation"
	OutcomeRain               Outcome = "rain"
	OutcomeYield              Outcome = "yield"
	OutcomeInvalidCrop        Outcome = "invalid_crop"
	OutcomeWeatherUnavailable Outcome = "weather_unavailable"
	OutcomeUpstream           Outcome = "upstream"
	OutcomeRejected           Outcome = "rejected"
	OutcomeMismatch           Outcome = "mismatch"
	OutcomeFailed             Outcome = "failed"
)

// Stats holds run statistics.
type Stats struct {
	Sent      int
	Outcomes  map[Outcome]int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Mismatches is the number of responses that broke the contract or failed.
func (s *Stats) Mismatches() int {
	return s.Outcomes[OutcomeMismatch] + s.Outcomes[OutcomeFailed]
}
