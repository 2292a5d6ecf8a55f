package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRejectsBadSpec(t *testing.T) {
	_, err := NewSweeper("not a schedule", func(context.Context) (int, error) { return 0, nil }, nil)
	assert.Error(t, err)
}

func TestSweeperRunInvokesSweep(t *testing.T) {
	calls := 0
	s, err := NewSweeper("@every 15m", func(ctx context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("mongo down")
		}
		return 3, nil
	}, nil)
	require.NoError(t, err)

	s.run()
	s.run()
	assert.Equal(t, 2, calls)
	assert.Len(t, s.cron.Entries(), 1)
}
