package config

// Config holds all w3mvp configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	DefaultWallet  string              `json:"default_wallet"`
	RPCAlgorithm   string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	Confirmations  uint64              `json:"confirmations"`
	PollInterval   int                 `json:"poll_interval"` // seconds
	TrackTimeout   int                 `json:"track_timeout"` // seconds; 0 waits until interrupted
	CustomRPCs     map[string][]string `json:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}
