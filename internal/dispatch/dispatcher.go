package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// DefaultChunkDelay paces consecutive chunks of one reply. Presentation
// only; ordering is guaranteed by the sequential send loop regardless.
const DefaultChunkDelay = time.Second

// FallbackLines are sent instead of a reply when the completion
// pipeline fails. Exactly one, chosen at random.
var FallbackLines = []string{
	"bro the AI just flatlined 💀",
	"my brain.exe stopped working",
	"ERROR 404: Smart thoughts not found",
	"the AI gods have abandoned me 😭",
	"*mechanical screeching noises*",
}

// SendFunc delivers one outbound message to the chat surface.
type SendFunc func(text string) error

// Dispatcher delivers generated text, splitting it to the transport's
// message-size limit and pacing the chunks.
type Dispatcher struct {
	limit  int
	pace   time.Duration
	randn  func(n int) int
	logger *zap.Logger
}

func NewDispatcher(limit int, pace time.Duration, logger *zap.Logger) *Dispatcher {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return &Dispatcher{
		limit:  limit,
		pace:   pace,
		randn:  rand.Intn,
		logger: logger,
	}
}

// WithRand substitutes the fallback-line selector. Used by tests.
func (d *Dispatcher) WithRand(f func(n int) int) *Dispatcher {
	d.randn = f
	return d
}

// Deliver sends text through send, in order, one chunk at a time.
func (d *Dispatcher) Deliver(ctx context.Context, send SendFunc, text string) error {
	chunks := SplitMessage(text, d.limit)
	if len(chunks) > 1 {
		d.logger.Debug("Splitting long reply",
			zap.Int("chunks", len(chunks)),
			zap.Int("length", len(text)))
	}
	for i, chunk := range chunks {
		if i > 0 && d.pace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.pace):
			}
		}
		if err := send(chunk); err != nil {
			return fmt.Errorf("sending chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// Fallback picks one fallback line.
func (d *Dispatcher) Fallback() string {
	return FallbackLines[d.randn(len(FallbackLines))]
}
