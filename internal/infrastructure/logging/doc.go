// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON lines on stderr for machine parsing
//   - Development: colored console output for humans
//
// Components accept a *zap.Logger and default to zap.NewNop(), so the
// client is silent unless the caller wires a logger in.
//
// Example Usage:
//
//	logger := logging.NewOrNop(logging.Config{Level: "debug", Development: true})
//	logger.Warn("retrying", logging.RPC("wXbhsf"), logging.Attempt(2))
package logging
