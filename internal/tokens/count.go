// Package tokens estimates prompt sizes with the cl100k_base encoding, falling
// back to a character heuristic while the encoding is unavailable.
package tokens

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// counter loads its encoding in the background. tiktoken fetches the BPE file
// over HTTP on first use without a timeout, so nothing waits on it.
type counter struct {
	load func() (*tiktoken.Tiktoken, error)
	once sync.Once
	enc  atomic.Pointer[tiktoken.Tiktoken]
	done chan struct{}
}

func newCounter(load func() (*tiktoken.Tiktoken, error)) *counter {
	return &counter{load: load, done: make(chan struct{})}
}

func (c *counter) warm() <-chan struct{} {
	c.once.Do(func() {
		go func() {
			defer close(c.done)
			if enc, err := c.load(); err == nil {
				c.enc.Store(enc)
			}
		}()
	})
	return c.done
}

func (c *counter) count(text string) int {
	if enc := c.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

var std = newCounter(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding(encodingName)
})

// Warm starts loading the encoding and returns a channel closed once loading
// has finished, successfully or not. Later calls return the same channel.
func Warm() <-chan struct{} {
	return std.warm()
}

// Count returns the cl100k_base token count of text, or Estimate until Warm
// has loaded the encoding.
func Count(text string) int {
	return std.count(text)
}

// Estimate returns max(runes/4, words), and at least 1 for non-blank text.
func Estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	return max(estimate, 1)
}
