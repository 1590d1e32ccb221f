// Package config provides layered configuration for the market suite.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default() values
//	2. A YAML file (MARKET_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Environment variables with the MARKET_ prefix
//
// A .env file in the working directory is loaded into the process
// environment before step 3.
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	MARKET_SERVER_PORT=8080
//	MARKET_DATA_LOCAL_PATH=historial_lite.parquet
//	MARKET_DATA_URL=https://example.com/historial.parquet
//	MARKET_DATA_CACHE_TTL=1h
//	MARKET_LOGGING_LEVEL=debug
//	MARKET_TELEMETRY_TRACE_EXPORTER=stdout
package config
