package chain

import "strings"

var defaultRegistry = NewRegistry()

// TxExplorerLinks resolves the block-explorer pages for a transaction on the
// given chain. Unknown chains and empty hashes yield an empty list.
func TxExplorerLinks(chainID int64, hash string) []ExplorerLink {
	return defaultRegistry.TxExplorerLinks(chainID, hash)
}

// TxExplorerLinks resolves explorer links against this registry.
func (r *Registry) TxExplorerLinks(chainID int64, hash string) []ExplorerLink {
	if chainID == 0 || hash == "" {
		return []ExplorerLink{}
	}
	c, err := r.GetByChainID(chainID)
	if err != nil {
		return []ExplorerLink{}
	}
	links := make([]ExplorerLink, 0, len(c.TxExplorers))
	for _, b := range c.TxExplorers {
		links = append(links, ExplorerLink{Name: b.Name, URL: b.URL + hash})
	}
	return links
}

// knownSelectors maps ERC-20 4-byte selectors to method names.
var knownSelectors = map[string]string{
	"0xa9059cbb": "transfer",
	"0x095ea7b3": "approve",
	"0x23b872dd": "transferFrom",
	"0x70a08231": "balanceOf",
	"0x313ce567": "decimals",
	"0x95d89b41": "symbol",
	"0x06fdde03": "name",
	"0x18160ddd": "totalSupply",
}

// DecodeMethod returns a human-readable method name for calldata. Plain
// value transfers decode as "transfer"; unknown selectors are returned as hex.
func DecodeMethod(input string) string {
	if input == "" || input == "0x" {
		return "transfer"
	}
	clean := strings.TrimPrefix(input, "0x")
	if len(clean) < 8 {
		return "call"
	}
	selector := "0x" + strings.ToLower(clean[:8])
	if name, ok := knownSelectors[selector]; ok {
		return name
	}
	return selector
}
