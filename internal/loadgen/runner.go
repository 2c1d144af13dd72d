package loadgen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/agrocast/pkg/logger"
)

// ErrContractViolations is returned by Run when any response broke the contract.
var ErrContractViolations = errors.New("contract violations detected")

// Run sends cfg.Requests generated requests with cfg.Workers workers and
// verifies every response.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Requests <= 0 || cfg.Workers <= 0 || len(cfg.Cities) == 0 {
		return nil, fmt.Errorf("requests, workers and cities must be set")
	}
	log := logger.Named("loadgen")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.ready(ctx); err != nil {
		return nil, err
	}

	stats := &Stats{Outcomes: map[Outcome]int{}, StartTime: time.Now()}
	requests := Generate(cfg.Requests, cfg.Cities)
	log.Info(ctx, "sending requests", logger.Int("requests", len(requests)), logger.Int("workers", cfg.Workers))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	reqCh := make(chan Request, cfg.Workers*2)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range reqCh {
				outcome := runOne(ctx, client, req, cfg.Verbose)
				mu.Lock()
				stats.Sent++
				stats.Outcomes[outcome]++
				mu.Unlock()
			}
		}()
	}

feed:
	for _, req := range requests {
		select {
		case <-ctx.Done():
			break feed
		case reqCh <- req:
		}
	}
	close(reqCh)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	printSummary(ctx, stats)

	if n := stats.Mismatches(); n > 0 {
		return stats, fmt.Errorf("%w: %d", ErrContractViolations, n)
	}
	return stats, ctx.Err()
}

func runOne(ctx context.Context, client *HTTPClient, req Request, verbose bool) Outcome {
	rctx := logger.WithRequestID(ctx, req.ID)
	log := logger.Named("loadgen")

	status, body, err := client.send(ctx, req)
	if err != nil {
		log.Warn(rctx, "request failed", logger.String("endpoint", req.Endpoint), logger.Error(err))
		return OutcomeFailed
	}
	outcome, err := Verify(req, status, body)
	if err != nil {
		log.Error(rctx, "contract violation",
			logger.String("endpoint", req.Endpoint),
			logger.String("params", req.Params.Encode()),
			logger.Error(err),
		)
		return outcome
	}
	if verbose {
		log.Info(rctx, "response verified",
			logger.String("endpoint", req.Endpoint),
			logger.Int("status", status),
			logger.String("outcome", string(outcome)),
		)
	}
	return outcome
}

func printSummary(ctx context.Context, stats *Stats) {
	log := logger.Named("loadgen")
	outcomes := make([]string, 0, len(stats.Outcomes))
	for o := range stats.Outcomes {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)

	rps := 0.0
	if stats.Duration > 0 {
		rps = float64(stats.Sent) / stats.Duration.Seconds()
	}
	log.Info(ctx, "run finished",
		logger.Int("sent", stats.Sent),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", rps),
		logger.Int("mismatches", stats.Mismatches()),
	)
	for _, o := range outcomes {
		log.Info(ctx, "outcome", logger.String("outcome", o), logger.Int("count", stats.Outcomes[Outcome(o)]))
	}
}
