package main

import (
	"context"
	"path/filepath"

	"StakingLedger/internal/config"
	"StakingLedger/internal/oracle"
)

// newOracle builds the configured price source and its cleanup.
func newOracle(ctx context.Context, cfg *config.Config) (oracle.Oracle, func(), error) {
	noop := func() {}
	switch cfg.Oracle.Kind {
	case "chainlink":
		o, err := oracle.DialChainlinkOracle(ctx, cfg.Oracle.RPCURL, cfg.OracleAddress())
		if err != nil {
			return nil, noop, err
		}
		return o, o.Close, nil
	case "http":
		return oracle.NewHTTPOracle(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Symbol, cfg.Proxy), noop, nil
	case "yahoo":
		return oracle.NewYahooOracle(cfg.Oracle.Symbol, cfg.Proxy), noop, nil
	default:
		return &oracle.MockOracle{Price: cfg.Oracle.MockPrice}, noop, nil
	}
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
