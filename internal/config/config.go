package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	PeerAddress      string
	PeerTimeout      time.Duration
	PeerTokenHash    string
	Identity         model.IdentityPolicy
	TxTimeout        time.Duration
	BatchConcurrency int
	SweepInterval    time.Duration
	SweepBatchSize   int
	WorkerPoolSize   int
	ShutdownTimeout  time.Duration
	TraceStdout      bool
	LogLevel         slog.Level
}

const (
	defaultRunAddress       = ":8080"
	defaultPeerTimeout      = 5 * time.Second
	defaultTxTimeout        = 10 * time.Second
	defaultBatchConcurrency = 1
	defaultSweepBatchSize   = 50
	defaultWorkerPoolSize   = 4
	defaultShutdownTimeout  = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	identity := model.DefaultIdentityPolicy()
	cfg := &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:      getString(lookup, "DATABASE_URI", ""),
		PeerAddress:      getString(lookup, "PEER_ADDRESS", ""),
		PeerTimeout:      getDuration(lookup, "PEER_TIMEOUT", defaultPeerTimeout),
		PeerTokenHash:    getString(lookup, "PEER_TOKEN_HASH", ""),
		TxTimeout:        getDuration(lookup, "TX_TIMEOUT", defaultTxTimeout),
		BatchConcurrency: getInt(lookup, "BATCH_CONCURRENCY", defaultBatchConcurrency),
		SweepInterval:    getDuration(lookup, "SWEEP_INTERVAL", 0),
		SweepBatchSize:   getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		WorkerPoolSize:   getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TraceStdout:      getBool(lookup, "TRACE_STDOUT", false),
	}

	fs := flag.NewFlagSet("ordersync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		peerTimeoutStr     = cfg.PeerTimeout.String()
		txTimeoutStr       = cfg.TxTimeout.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		logLevel           = getString(lookup, "LOG_LEVEL", slog.LevelInfo.String())
		scheme             = getString(lookup, "IDENTITY_SCHEME", string(identity.Scheme))
		matchKey           = getString(lookup, "MATCH_KEY", string(identity.Match))
		duplicatePolicy    = getString(lookup, "DUPLICATE_POLICY", string(identity.OnDuplicate))
		replaceLines       = getBool(lookup, "REPLACE_LINES_ON_UPDATE", false)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PeerAddress, "p", cfg.PeerAddress, "Peer system base URL")
	fs.StringVar(&peerTimeoutStr, "peer-timeout", peerTimeoutStr, "Timeout of one status push to the peer")
	fs.StringVar(&scheme, "identity-scheme", scheme, "Order identity scheme: caller-supplied, store-generated or external-key")
	fs.StringVar(&matchKey, "match-key", matchKey, "Columns matched for dedup: identity, identity-status, status-supplier or none")
	fs.StringVar(&duplicatePolicy, "duplicate-policy", duplicatePolicy, "Handling of matched orders: reject or upsert")
	fs.BoolVar(&replaceLines, "replace-lines", replaceLines, "Replace order lines when an upsert updates an order")
	fs.StringVar(&txTimeoutStr, "tx-timeout", txTimeoutStr, "Maximum lifetime of one store transaction")
	fs.IntVar(&cfg.BatchConcurrency, "batch-concurrency", cfg.BatchConcurrency, "Orders of one batch ingested concurrently")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval of the incomplete order republish sweep, 0 disables it")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders republished per sweep")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent sweep workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.BoolVar(&cfg.TraceStdout, "trace-stdout", cfg.TraceStdout, "Export traces to stdout")
	fs.StringVar(&logLevel, "log-level", logLevel, "Minimum log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PeerTimeout, err = time.ParseDuration(peerTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid peer timeout: %w", err)
	}

	if cfg.TxTimeout, err = time.ParseDuration(txTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid tx timeout: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if hashFile, ok := lookup("PEER_TOKEN_HASH_FILE"); ok && hashFile != "" {
		content, err := os.ReadFile(hashFile)
		if err != nil {
			return nil, fmt.Errorf("read peer token hash file: %w", err)
		}
		cfg.PeerTokenHash = strings.TrimSpace(string(content))
	}

	cfg.Identity = model.IdentityPolicy{
		Scheme:             model.IdentityScheme(scheme),
		Match:              model.MatchKey(matchKey),
		OnDuplicate:        model.DuplicatePolicy(duplicatePolicy),
		ReplaceLinesOnSync: replaceLines,
	}
	if err := cfg.Identity.Validate(); err != nil {
		return nil, fmt.Errorf("invalid identity policy: %w", err)
	}

	if cfg.PeerTimeout <= 0 {
		cfg.PeerTimeout = defaultPeerTimeout
	}

	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}

	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}

	if cfg.SweepInterval < 0 {
		cfg.SweepInterval = 0
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PeerAddress == "" {
		return nil, fmt.Errorf("peer address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
