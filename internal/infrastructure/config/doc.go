// Package config provides layered configuration for the notebook client.
//
// Values come from three layers, later layers winning:
//  1. Default(): working values for the public service
//  2. an optional TOML file passed to Load
//  3. environment variables
//
// The build label rotates whenever the service ships a new frontend, so it
// is always overridable without a code change (NOTEBOOKLM_BL).
//
// Example Usage:
//
//	cfg, err := config.Load(os.Getenv("NOTEBOOKRPC_CONFIG"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Service.BatchURL())
//
// Environment Variables:
//   - NOTEBOOKLM_BASE_URL, NOTEBOOKLM_BL, NOTEBOOKLM_HL, NOTEBOOKLM_USER_AGENT
//   - NOTEBOOKLM_TIMEOUT, NOTEBOOKLM_QUERY_TIMEOUT, NOTEBOOKLM_SOURCE_TIMEOUT
//   - NOTEBOOKLM_MAX_RETRIES, NOTEBOOKLM_RETRY_BASE, NOTEBOOKLM_RETRY_MAX
//   - NOTEBOOKLM_RATE_LIMIT, NOTEBOOKLM_RATE_BURST
//   - NOTEBOOKLM_RPC_* (one per operation)
//   - NOTEBOOKRPC_DATA_DIR, LOG_LEVEL, LOG_DEV
package config
