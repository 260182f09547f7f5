package present

import (
	"context"
	"fmt"

	"go.uber.org/atomic"
)

// Clipboard is the platform clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// CopyState is the ClipboardFlag. The zero value is ready to use and reads
// as not copied.
type CopyState struct {
	copied atomic.Bool
}

// Copy writes value to cb. The flag is set only when the write succeeds; a
// failed write is returned and leaves the flag as it was.
func (c *CopyState) Copy(ctx context.Context, cb Clipboard, value string) error {
	if err := cb.WriteText(ctx, value); err != nil {
		return fmt.Errorf("present: write clipboard: %w", err)
	}
	c.copied.Store(true)
	return nil
}

// Reset clears the flag.
func (c *CopyState) Reset() {
	c.copied.Store(false)
}

// Copied reports whether the current hash has been copied.
func (c *CopyState) Copied() bool {
	return c.copied.Load()
}

// CopyLabel is the copy button text.
func CopyLabel(copied bool) string {
	if copied {
		return "Copied"
	}
	return "Copy"
}
