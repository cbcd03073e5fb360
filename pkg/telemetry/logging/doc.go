// Package logging builds the process *slog.Logger.
//
// # Overview
//
// New wraps a JSON or text slog handler with a Handler that:
//   - redacts PII from string attributes (API keys, bearer tokens, email
//     addresses and any configured patterns)
//   - masks the value of attributes whose key looks sensitive ("api_key",
//     "authorization", "token", ...)
//   - adds the request id stored in the context to every record
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "3f1c...")
//	logger.InfoContext(ctx, "draft created",
//	    "to", "dana@example.com",   // logged as d***@example.com
//	    "api_key", "sk-abc123xyz",  // logged as sk-a***
//	)
//
// Recipients are logged so that a draft can be traced, and redaction keeps
// them readable enough for that without writing addresses in clear.
package logging
