package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// BPECounter counts tokens with a byte-pair encoding.
type BPECounter struct {
	encoding string
	encoder  Encoder
}

// Count returns the number of BPE tokens in text.
func (c *BPECounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoder.Encode(text, nil, nil))
}

// Enabled returns true.
func (c *BPECounter) Enabled() bool { return true }

// Name returns "tiktoken/<encoding>".
func (c *BPECounter) Name() string { return "tiktoken/" + c.encoding }

// loadTiktoken loads an encoding by name. The first load of an encoding
// downloads its ranks unless TIKTOKEN_CACHE_DIR already holds them.
func loadTiktoken(name string) (Encoder, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", name, err)
	}
	return enc, nil
}
