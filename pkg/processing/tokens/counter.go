package tokens

import (
	"fmt"
	"log/slog"
	"sync"

	"mercator-hq/tonecoach/pkg/config"
)

// Counter counts tokens in text.
type Counter interface {
	// Count returns the approximate token count of text. It never fails;
	// a disabled counter returns 0.
	Count(text string) int

	// Enabled reports whether Count produces real estimates.
	Enabled() bool

	// Name identifies the counter in logs.
	Name() string
}

// Encoder turns text into tokens.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// EncodingLoader loads a named byte-pair encoding.
type EncodingLoader func(name string) (Encoder, error)

// NewCounter builds the counter selected by cfg.Estimator. Initialization
// failures are logged as warnings and produce a disabled counter.
func NewCounter(cfg *config.TokensConfig, logger *slog.Logger) Counter {
	return newCounter(cfg, logger, loadTiktoken)
}

func newCounter(cfg *config.TokensConfig, logger *slog.Logger, load EncodingLoader) Counter {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Estimator {
	case "simple":
		return NewSimpleCounter(cfg.CharsPerToken)
	case "tiktoken", "":
		enc, err := load(cfg.Encoding)
		if err != nil {
			logger.Warn("tokenizer unavailable, token estimates will be zero",
				"estimator", "tiktoken",
				"encoding", cfg.Encoding,
				"error", err,
			)
			return NewDisabledCounter(err, logger)
		}
		return &BPECounter{encoding: cfg.Encoding, encoder: enc}
	default:
		err := fmt.Errorf("unknown estimator %q", cfg.Estimator)
		logger.Warn("tokenizer unavailable, token estimates will be zero", "error", err)
		return NewDisabledCounter(err, logger)
	}
}

// DisabledCounter is returned when no tokenizer could be initialized.
type DisabledCounter struct {
	cause  error
	logger *slog.Logger
	once   sync.Once
}

// NewDisabledCounter returns a counter that always counts 0 and warns once
// on first use.
func NewDisabledCounter(cause error, logger *slog.Logger) *DisabledCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DisabledCounter{cause: cause, logger: logger}
}

// Count returns 0.
func (c *DisabledCounter) Count(text string) int {
	c.once.Do(func() {
		c.logger.Warn("token count requested from disabled tokenizer", "cause", c.cause)
	})
	return 0
}

// Enabled returns false.
func (c *DisabledCounter) Enabled() bool { return false }

// Name returns "disabled".
func (c *DisabledCounter) Name() string { return "disabled" }

// Cause returns the initialization error that disabled the counter.
func (c *DisabledCounter) Cause() error { return c.cause }
