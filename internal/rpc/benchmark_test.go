package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ResultsToEndpoints
// ---------------------------------------------------------------------------

func TestResultsToEndpointsEmpty(t *testing.T) {
	out := ResultsToEndpoints(nil)
	assert.Empty(t, out)

	out2 := ResultsToEndpoints([]BenchmarkResult{})
	assert.Empty(t, out2)
}

func TestResultsToEndpointsHealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Latency: 50 * time.Millisecond, BlockNumber: 100, Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.Equal(t, "https://rpc1.example.com", ep.URL)
	assert.Equal(t, 50*time.Millisecond, ep.Latency)
	assert.Equal(t, uint64(100), ep.BlockNumber)
	assert.True(t, ep.Healthy)
	assert.True(t, ep.Checked)
}

func TestResultsToEndpointsUnhealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://dead.rpc.example.com", Err: errors.New("connection refused")},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.False(t, ep.Healthy)
	assert.True(t, ep.Checked, "Checked must always be true after ResultsToEndpoints")
}

func TestResultsToEndpointsMixed(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Err: nil},
		{URL: "https://rpc2.example.com", Err: errors.New("timeout")},
		{URL: "https://rpc3.example.com", Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 3)

	assert.True(t, endpoints[0].Healthy)
	assert.False(t, endpoints[1].Healthy)
	assert.True(t, endpoints[2].Healthy)

	// All must have Checked=true.
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

func TestResultsToEndpointsPreservesOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	results := make([]BenchmarkResult, len(urls))
	for i, u := range urls {
		results[i] = BenchmarkResult{URL: u}
	}

	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, len(urls))
	for i, u := range urls {
		assert.Equal(t, u, endpoints[i].URL, "order must be preserved at index %d", i)
	}
}

func TestResultsToEndpointsPreservesLatency(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://fast.rpc", Latency: 10 * time.Millisecond},
		{URL: "https://slow.rpc", Latency: 500 * time.Millisecond},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 2)

	assert.Equal(t, 10*time.Millisecond, endpoints[0].Latency)
	assert.Equal(t, 500*time.Millisecond, endpoints[1].Latency)
}

func TestResultsToEndpointsCheckedAlwaysTrue(t *testing.T) {
	// Even for zero-value results, Checked must be true.
	results := []BenchmarkResult{{}, {}, {}}
	endpoints := ResultsToEndpoints(results)
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

// ---------------------------------------------------------------------------
// Best
// ---------------------------------------------------------------------------

func TestBestSingleURL(t *testing.T) {
	// A single URL is returned without a benchmark, so no network is needed.
	url, err := Best(context.Background(), []string{"https://only.rpc.example.com"}, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "https://only.rpc.example.com", url)
}

func TestBestNoURLs(t *testing.T) {
	_, err := Best(context.Background(), []string{}, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestBenchmarkMixed(t *testing.T) {
	live := evmRPCServer(t, 42)
	defer live.Close()

	results := Benchmark(context.Background(), []string{"http://127.0.0.1:19993", live.URL})
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, uint64(42), results[1].BlockNumber)
}

func TestBestSkipsDeadEndpoint(t *testing.T) {
	live := evmRPCServer(t, 42)
	defer live.Close()

	url, err := Best(context.Background(), []string{"http://127.0.0.1:19993", live.URL}, AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, live.URL, url)
}

// ---------------------------------------------------------------------------
// FirstHealthy
// ---------------------------------------------------------------------------

// stallingRPCServer never answers; it reports when the client gave up.
func stallingRPCServer(t *testing.T) (*httptest.Server, <-chan struct{}) {
	t.Helper()
	gaveUp := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			select {
			case gaveUp <- struct{}{}:
			default:
			}
		case <-time.After(10 * time.Second):
		}
	}))
	return srv, gaveUp
}

func TestFirstHealthyKeepsListOrder(t *testing.T) {
	first := evmRPCServer(t, 40)
	defer first.Close()
	second := evmRPCServer(t, 42)
	defer second.Close()

	r, err := FirstHealthy(context.Background(), []string{"http://127.0.0.1:19993", first.URL, second.URL})
	require.NoError(t, err)
	assert.Equal(t, first.URL, r.URL)
	assert.Equal(t, uint64(40), r.BlockNumber)
}

func TestFirstHealthyCancelsSlowerPings(t *testing.T) {
	live := evmRPCServer(t, 42)
	defer live.Close()
	slow, gaveUp := stallingRPCServer(t)
	defer slow.Close()

	start := time.Now()
	r, err := FirstHealthy(context.Background(), []string{live.URL, slow.URL})
	require.NoError(t, err)
	assert.Equal(t, live.URL, r.URL)
	assert.Less(t, time.Since(start), 5*time.Second)

	select {
	case <-gaveUp:
	case <-time.After(5 * time.Second):
		t.Fatal("ping of the stalled endpoint was not cancelled")
	}
}

func TestFirstHealthyNoneAnswer(t *testing.T) {
	_, err := FirstHealthy(context.Background(), []string{"http://127.0.0.1:19993", "http://127.0.0.1:19994"})
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestFirstHealthyParentCancelled(t *testing.T) {
	slow, _ := stallingRPCServer(t)
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := FirstHealthy(ctx, []string{slow.URL})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
