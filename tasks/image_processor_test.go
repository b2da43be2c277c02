package tasks

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

// newTestProcessor swaps the real resize and sleep for instrumented fakes.
// failures controls how many attempts fail before succeeding; a negative
// value fails forever.
func newTestProcessor(failures int, failErr error) (*ImageProcessor, *[]time.Duration) {
	p := NewImageProcessor(8, 1, 3)

	attempts := 0
	p.resize = func(path string) error {
		attempts++
		if failures < 0 || attempts <= failures {
			return failErr
		}
		return nil
	}

	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }
	return p, &slept
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	p, slept := newTestProcessor(0, nil)

	result := p.Run("img1", "/tmp/img1.jpg")

	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 0, result.Retries)
	assert.Empty(t, *slept)
}

func TestRunRetriesTransientFailures(t *testing.T) {
	// Fails twice, succeeds on the third attempt: two retries with growing
	// backoff, then success.
	p, slept := newTestProcessor(2, errors.New("disk hiccup"))

	result := p.Run("img1", "/tmp/img1.jpg")

	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 2, result.Retries)
	require.Len(t, *slept, 2)
	assert.Equal(t, 60*time.Second, (*slept)[0])
	assert.Equal(t, 120*time.Second, (*slept)[1])
	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second}, result.Delays)
}

func TestRunExhaustsRetries(t *testing.T) {
	// Four consecutive failures against max 3 retries: the job fails after
	// exactly 3 retries and never attempts again.
	attempts := 0
	p := NewImageProcessor(8, 1, 3)
	p.resize = func(path string) error {
		attempts++
		return errors.New("disk hiccup")
	}
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	result := p.Run("img1", "/tmp/img1.jpg")

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 3, result.Retries)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second, 180 * time.Second}, slept)
}

func TestRunMissingFileIsTerminal(t *testing.T) {
	p, slept := newTestProcessor(-1, fs.ErrNotExist)

	result := p.Run("img1", "/tmp/gone.jpg")

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 0, result.Retries)
	assert.Empty(t, *slept)
}

func TestRunMissingFileAfterRetryIsTerminal(t *testing.T) {
	// A file that disappears between attempts stops the retry loop.
	attempts := 0
	p := NewImageProcessor(8, 1, 3)
	p.resize = func(path string) error {
		attempts++
		if attempts == 1 {
			return errors.New("disk hiccup")
		}
		return fs.ErrNotExist
	}
	p.sleep = func(time.Duration) {}

	result := p.Run("img1", "/tmp/img1.jpg")

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 1, result.Retries)
	assert.Equal(t, 2, attempts)
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	p := NewImageProcessor(1, 1, 3)

	require.NoError(t, p.Enqueue("img1", "/tmp/a.jpg"))
	err := p.Enqueue("img2", "/tmp/b.jpg")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "img2")
}

func TestWorkersDrainQueue(t *testing.T) {
	p := NewImageProcessor(8, 2, 3)

	processed := make(chan string, 8)
	p.resize = func(path string) error {
		processed <- path
		return nil
	}
	p.sleep = func(time.Duration) {}

	require.NoError(t, p.Enqueue("img1", "/tmp/a.jpg"))
	require.NoError(t, p.Enqueue("img2", "/tmp/b.jpg"))
	require.NoError(t, p.Enqueue("img3", "/tmp/c.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case path := <-processed:
			seen[path] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for workers")
		}
	}
	assert.Len(t, seen, 3)
	p.Stop()
}
