/*
Package monitoring provides Prometheus metrics for the RPC client.

# Overview

Each client owns a Metrics value with its own registry, so two clients in
one process (for example two accounts) keep separate counters.

# Metrics

- notebookrpc_calls_total{rpc,outcome}
- notebookrpc_call_duration_seconds{rpc}
- notebookrpc_retries_total{rpc,status}
- notebookrpc_auth_recoveries_total{stage,outcome}
- notebookrpc_session_state
- notebookrpc_queries_total{follow_up}
- notebookrpc_conversations

# Usage

	metrics := monitoring.NewMetrics()

	timer := monitoring.NewTimer(metrics, "wXbhsf")
	_, err := call()
	timer.Stop(err)

	http.Handle("/metrics", metrics.Handler())
*/
package monitoring
