package process_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/process"
	"github.com/aretw0/sluice/pkg/domain"
)

func TestExecutorHonorsDeadline(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sleep")
	}
	if testing.Short() {
		t.Skip("skipping slow test in short mode")
	}

	sh := process.NewShell()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := sh.Execute(ctx, "sleep 5", "")
	duration := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, duration, 2*time.Second, "process should be killed at the deadline, not run out")

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.LangShell, execErr.Language)
}

func TestExecutorCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sh := process.NewShell()
	_, err := sh.Execute(ctx, "echo late", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
