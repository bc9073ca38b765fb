package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForDatabase_RetriesUntilReady(t *testing.T) {
	p := &flakyPinger{failures: 1}

	err := waitForDatabase(context.Background(), p, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestWaitForDatabase_GivesUpAfterDeadline(t *testing.T) {
	p := &flakyPinger{failures: 100}

	err := waitForDatabase(context.Background(), p, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, p.calls)
}

func TestWaitForDatabase_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyPinger{failures: 100}

	err := waitForDatabase(ctx, p, time.Minute)

	require.Error(t, err)
	assert.Equal(t, 1, p.calls)
}
