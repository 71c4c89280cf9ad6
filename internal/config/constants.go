package config

import "time"

// Timeouts used by cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark
	ReadTimeout      = 30 * time.Second // contract reads, balance lookups
	SubmitTimeout    = 2 * time.Minute  // sign + broadcast of one transfer
)

// Environment variables.
const (
	EnvConfigDir = "W3MVP_CONFIG_DIR"
	EnvRPCPrefix = "W3MVP_RPC_"
)
