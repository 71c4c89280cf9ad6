package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
)

const (
	defaultNetwork       = "sepolia"
	defaultAlgorithm     = "fastest"
	defaultConfirmations = 1
	defaultPollInterval  = 4
	defaultTrackTimeout  = 180

	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"
)

// DefaultDir returns $W3MVP_CONFIG_DIR, or ~/.w3mvp when unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3mvp"), nil
}

// Load reads config from dir (or creates defaults). dir defaults to DefaultDir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = defaultConfirmations
	}

	return cfg, nil
}

// LoadEnv loads .env from the config dir and then from the working directory.
// Variables already present in the environment always win; a missing file is
// not an error.
func (c *Config) LoadEnv() error {
	for _, path := range []string{filepath.Join(c.configDir, envFile), envFile} {
		err := godotenv.Load(path)
		if err == nil {
			log.Debug("Loaded env file", "path", path)
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns the user's RPCs for a chain: the W3MVP_RPC_<CHAIN>
// environment override first, then the custom RPCs from config.json.
func (c *Config) GetRPCs(chain string) []string {
	out := EnvRPCs(chain)
	for _, u := range c.CustomRPCs[chain] {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// EnvRPCs returns the comma-separated URLs in W3MVP_RPC_<CHAIN>, if set.
func EnvRPCs(chain string) []string {
	var out []string
	for _, u := range strings.Split(os.Getenv(EnvRPCKey(chain)), ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// EnvRPCKey returns the environment variable consulted for chain's RPC
// override: "linea-sepolia" → "W3MVP_RPC_LINEA_SEPOLIA".
func EnvRPCKey(chain string) string {
	return EnvRPCPrefix + strings.ToUpper(strings.ReplaceAll(chain, "-", "_"))
}

// PollEvery returns the settlement polling interval.
func (c *Config) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// TrackFor returns how long a command watches a transfer before giving up.
// Zero means no deadline.
func (c *Config) TrackFor() time.Duration {
	if c.TrackTimeout <= 0 {
		return 0
	}
	return time.Duration(c.TrackTimeout) * time.Second
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeysDir returns the directory used by the file keyring fallback.
func (c *Config) KeysDir() string {
	return filepath.Join(c.configDir, "keys")
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		RPCAlgorithm:   defaultAlgorithm,
		Confirmations:  defaultConfirmations,
		PollInterval:   defaultPollInterval,
		TrackTimeout:   defaultTrackTimeout,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}
