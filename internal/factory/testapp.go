package factory

import (
	"context"
	"testing"
	"time"

	"github.com/openarcade/lobby/internal/dependencies/mocks"
	"github.com/openarcade/lobby/internal/storage/memory"
	"github.com/openarcade/lobby/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock *mocks.MockClock
}

// NewTestApp creates an App over in-memory storage with a mocked clock.
// Bundles land in a per-test temp dir.
func NewTestApp(t *testing.T) *TestApp {
	t.Helper()

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	app, err := newWithDependencies(context.Background(), store, mockClock, t.TempDir(), testutil.NopLogger())
	if err != nil {
		t.Fatalf("failed to wire test app: %v", err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
