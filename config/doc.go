// Package config provides configuration loading and validation for bluelist.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (BLUELIST_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with the BLUELIST_ prefix:
//   - server.port → BLUELIST_SERVER_PORT
//   - server.backend_timeout → BLUELIST_SERVER_BACKEND_TIMEOUT
//   - database.type → BLUELIST_DATABASE_TYPE
//   - signing.bucket → BLUELIST_SIGNING_BUCKET
//
// The signing secret is never read from the main config keys; it comes from
// the keys section (inline pairs or a key file) and is looked up by
// signing.access_key.
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be sqlite, postgres, or dynamodb
//   - signing.access_key is required once signing.bucket is set
//   - Log level must be debug, info, warn, or error
package config
