package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
)

const healthTimeout = 5 * time.Second

// HealthCheck pings a single RPC and reports whether it is usable. A node is
// healthy if it answers within healthTimeout and its head is no more than
// staleBlockThreshold blocks behind bestBlock (0 skips the recency check).
func HealthCheck(ctx context.Context, url string, bestBlock uint64) (Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	latency, blockNum, err := chain.NewEVMClient(url, chain.WithRetries(0)).Ping(ctx)
	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: blockNum,
		Healthy:     err == nil && !behind(blockNum, bestBlock),
		Checked:     true,
	}
	return ep, err
}

func behind(block, best uint64) bool {
	return best > 0 && best > block && best-block > staleBlockThreshold
}
