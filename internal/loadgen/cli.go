package loadgen

import (
	"fmt"
	"os"

	"github.com/okian/agrocast/pkg/logger"
)

// SetupLogging initializes the logger; verbose lowers the level to debug.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithWriter(os.Stdout, "text"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp displays usage information.
func ShowHelp() {
	fmt.Print(`Agrocast Load Generator

Sends randomized irrigation and yield prediction requests to a running
service and checks each response against the API contract:

  - rain responses carry exactly recommended_water_mm, reason and weather
  - an unsupported crop yields 200 {"error": ...} on /predict-irrigation
    and 400 {"detail": ...} on /predict-yield
  - every error response carries a detail message
  - the X-Request-ID header is echoed back

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -requests int
        Number of requests to send (default 1000)
  -workers int
        Number of concurrent workers (default: 2 * CPU cores)
  -cities string
        Comma-separated cities to query (default "Pune,Delhi,Chennai,Cherrapunji")
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Log every verified response
  -help
        Show this help message

The process exits non-zero when any response breaks the contract.
`)
}
