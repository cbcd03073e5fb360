package tokens

// SimpleCounter implements character-based token estimation.
type SimpleCounter struct {
	charsPerToken float64
}

// NewSimpleCounter creates a character-based counter. A non-positive ratio
// falls back to 4 characters per token.
func NewSimpleCounter(charsPerToken float64) *SimpleCounter {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &SimpleCounter{charsPerToken: charsPerToken}
}

// Count estimates tokens from the rune count, rounding to the nearest integer
// with a minimum of 1 for non-empty text.
func (c *SimpleCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	runes := 0
	for range text {
		runes++
	}

	tokens := float64(runes) / c.charsPerToken
	if tokens < 1.0 {
		tokens = 1.0
	}
	return int(tokens + 0.5)
}

// Enabled returns true.
func (c *SimpleCounter) Enabled() bool { return true }

// Name returns "simple".
func (c *SimpleCounter) Name() string { return "simple" }
