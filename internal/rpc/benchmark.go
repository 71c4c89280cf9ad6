package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Benchmark pings every URL in parallel. Results keep the order of urls; a
// failed ping is recorded in its result, never returned.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			results[i] = ping(ctx, u)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // pings record their own errors
	return results
}

var errSettled = errors.New("first healthy endpoint found")

// FirstHealthy pings urls in parallel and returns the first one, in list
// order, that answers. Pings still running once it is known are cancelled.
func FirstHealthy(ctx context.Context, urls []string) (BenchmarkResult, error) {
	var (
		mu      sync.Mutex
		results = make([]*BenchmarkResult, len(urls))
		winner  = -1
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			r := ping(gctx, u)
			mu.Lock()
			defer mu.Unlock()
			results[i] = &r
			for j, rj := range results {
				if rj == nil {
					return nil
				}
				if rj.Err == nil {
					winner = j
					return errSettled
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errSettled) {
		return BenchmarkResult{}, err
	}
	if winner < 0 {
		if err := ctx.Err(); err != nil {
			return BenchmarkResult{}, err
		}
		return BenchmarkResult{}, ErrNoHealthyRPC
	}
	return *results[winner], nil
}

func ping(ctx context.Context, url string) BenchmarkResult {
	latency, block, err := chain.NewEVMClient(url, chain.WithRetries(0)).Ping(ctx)
	return BenchmarkResult{URL: url, Latency: latency, BlockNumber: block, Err: err}
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best benchmarks urls and returns the one picked by algo. A single URL is
// returned without a benchmark.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	return NewPicker(algo).Best(ctx, urls)
}

// Best benchmarks urls and returns the one this picker selects.
func (p *Picker) Best(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	if p.algo == AlgorithmFailover {
		r, err := FirstHealthy(ctx, urls)
		if err != nil {
			return "", err
		}
		return r.URL, nil
	}
	winner, err := p.Pick(ResultsToEndpoints(Benchmark(ctx, urls)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
