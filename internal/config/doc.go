// Package config loads worldwise configuration.
//
// # Configuration Discovery
//
// Load resolves settings in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/worldwise/config.toml
//  3. A missing file is not an error; defaults fill every field
//  4. WORLDWISE_* environment variables override file values
//
// Files ending in .yaml or .yml are parsed as YAML after ${VAR} expansion.
// Anything else is parsed as TOML.
//
// # Default Values
//
//   - api_url: http://localhost:9000
//   - request_timeout: unset (requests are not bounded)
//   - refresh_interval: unset (no background refresh)
//   - log_level: info
//   - log_file: ~/.local/state/worldwise/worldwise.log
//   - server.addr: :9000
//   - server.db_path: ~/.local/share/worldwise/cities.db
//
// # TOML Format
//
//	api_url = "http://localhost:9000"
//	request_timeout = "10s"
//	refresh_interval = "1m"
//	log_level = "debug"
//
//	[server]
//	addr = ":9000"
//	seed_path = "~/worldwise/cities.json"
//
// # Environment
//
//	WORLDWISE_API_URL           WORLDWISE_LOG_FILE
//	WORLDWISE_REQUEST_TIMEOUT   WORLDWISE_SERVER_ADDR
//	WORLDWISE_REFRESH_INTERVAL  WORLDWISE_DB_PATH
//	WORLDWISE_LOG_LEVEL         WORLDWISE_SEED_PATH
//
// Blank variables are ignored. A .env file in the working directory is
// loaded by the command before Load runs.
//
// # Errors
//
// Load fails on unreadable files, malformed TOML/YAML, unparseable
// durations or log levels, and values rejected by Validate (a non-http
// api_url, negative durations, empty paths).
package config
