// Package config loads runtime configuration for the diary client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the remote diary service
//	-i int      online status check interval (seconds)
//	-d string   local data directory
//	-p int      background pull interval (seconds)
//	-g string   aggregator base url
//	-t int      analysis timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "data_dir": "/home/me/.config/gophdiary",
//	  "pull_interval": "5m",
//	  "aggregator_url": "https://aggregator.example",
//	  "aggregator_interval": "30m",
//	  "analysis_timeout": "2m",
//	  "access_token": "..."
//	}
//
// The package does not read environment variables.
package config
