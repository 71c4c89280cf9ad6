package rpc

import (
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Mohsinsiddi/w3mvp/internal/chain"
)

// Candidates lists the endpoints to try for c: the user's own RPCs first,
// then the registry defaults, without duplicates.
func Candidates(c *chain.Chain, user []string) []string {
	out := make([]string, 0, len(user)+len(c.RPCs))
	for _, u := range append(slices.Clone(user), c.RPCs...) {
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// Dial selects an endpoint for c with the named algorithm and returns a
// client for it. An empty algorithm means "fastest".
func Dial(ctx context.Context, c *chain.Chain, user []string, algorithm string, opts ...chain.ClientOption) (*chain.EVMClient, error) {
	return DialURLs(ctx, c.DisplayName, Candidates(c, user), algorithm, opts...)
}

// DialURLs is Dial restricted to urls. name labels errors.
func DialURLs(ctx context.Context, name string, urls []string, algorithm string, opts ...chain.ClientOption) (*chain.EVMClient, error) {
	algo, err := ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	url, err := Best(ctx, urls, algo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("Selected RPC endpoint", "network", name, "url", url, "algorithm", algo, "candidates", len(urls))
	return chain.NewEVMClient(url, opts...), nil
}
