package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context with a 30 second timeout, cancelled when
// the test finishes.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
