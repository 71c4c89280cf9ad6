package chain

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// ExplorerLink is a named block-explorer URL. In the registry URL is the
// transaction base (hash appended); once resolved it is the full link.
type ExplorerLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Chain holds all metadata for a single supported network.
type Chain struct {
	Name           string         `json:"name"`
	DisplayName    string         `json:"display_name"`
	ChainID        int64          `json:"chain_id"`
	NativeCurrency string         `json:"native_currency"`
	RPCs           []string       `json:"rpcs"`
	TxExplorers    []ExplorerLink `json:"tx_explorers"`
	FaucetURL      string         `json:"faucet_url,omitempty"`
	// DemoToken is an ERC-20 deployed on this network for trying the read and
	// transfer flows. Empty when none is configured.
	DemoToken string `json:"demo_token,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the registry of supported networks.
func NewRegistry() *Registry {
	return newRegistry(allChains())
}

func newRegistry(chains []Chain) *Registry {
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry, ordered by name.
func (r *Registry) All() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetByName finds a chain by its slug name (e.g. "sepolia").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// Supported reports whether id is a chain this application works with.
func (r *Registry) Supported(id int64) bool {
	_, ok := r.byID[id]
	return ok
}

// String renders "Sepolia (11155111)".
func (c *Chain) String() string {
	if c == nil {
		return "unsupported"
	}
	return c.DisplayName + " (" + strconv.FormatInt(c.ChainID, 10) + ")"
}

// --- chain data ---

const demoERC20 = "0x09720b03264A7278299d74465e4D94E203040304"

func allChains() []Chain {
	return []Chain{
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org"},
			TxExplorers: []ExplorerLink{
				{Name: "Etherscan (Sepolia)", URL: "https://sepolia.etherscan.io/tx/"},
			},
			FaucetURL: "https://sepoliafaucet.com",
			DemoToken: demoERC20,
		},
		{
			Name: "linea-sepolia", DisplayName: "Linea Sepolia", ChainID: 59141,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://rpc.sepolia.linea.build"},
			TxExplorers: []ExplorerLink{
				{Name: "LineaScan (Sepolia)", URL: "https://sepolia.lineascan.build/tx/"},
				{Name: "Linea Explorer (Sepolia)", URL: "https://explorer.sepolia.linea.build/tx/"},
			},
			FaucetURL: "https://www.infura.io/faucet/linea",
			DemoToken: demoERC20,
		},
	}
}
