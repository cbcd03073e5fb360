// Package config provides configuration management for tonecoach.
//
// Configuration is read from a YAML file, layered over built-in defaults,
// and then overridden by environment variables:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// An empty path skips the file, which is how the tool runs with no
// configuration at all.
//
// # Environment Variable Overrides
//
// Environment variables use the TONECOACH_ prefix:
//
//   - TONECOACH_LISTEN_ADDRESS overrides server.listen_address
//   - TONECOACH_USE_HOSTED overrides model.use_hosted
//   - TONECOACH_MODEL_URL and TONECOACH_MODEL override model.local
//   - TONECOACH_OPENAI_API_KEY (or OPENAI_API_KEY) overrides model.hosted.api_key
//   - TONECOACH_MAIL_SCOPES overrides mail.scopes (comma separated)
//   - TONECOACH_PRICING_FALLBACK overrides processing.costs.fallback_policy
//
// # Pricing
//
// processing.costs.pricing holds prices in USD per processing.costs.unit
// tokens (1,000,000 by default) for every entry. Model keys are lower-cased
// on load. Entries given in the file are merged into the built-in table.
//
// # Singleton Pattern
//
// The command layer calls Initialize once and reads the result with
// GetConfig. Packages below the command layer take a *Config or one of its
// sections as an explicit argument.
package config
