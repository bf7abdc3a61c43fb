// Package config loads runtime configuration for the session CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. BACKEND_API_URL from the environment.
//  4. Command-line flags.
//
// Supported flags
//
//	-b string     relay base url (http transport)
//	-t string     transport: http or grpc
//	-g string     gRPC backend address
//	-s string     token store: sqlite, redis or memory
//	-d string     SQLite database path
//	-r string     Redis address
//	-rp string    Redis password
//	-rt duration  backend request timeout, e.g. 5s
//	-m string     metrics listen address
//
// # JSON schema
//
// Durations use timex.Duration, so "5s" and integer nanoseconds both work:
//
//	{
//	  "backend_url": "http://localhost:3000",
//	  "transport": "http",
//	  "token_store": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "request_timeout": "5s"
//	}
package config
