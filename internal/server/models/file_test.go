package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to FileStatus
		want     bool
	}{
		{StatusLoaded, StatusStored, true},
		{StatusLoaded, StatusFailed, true},
		{StatusLoaded, StatusZipped, false},
		{StatusStored, StatusZipped, true},
		{StatusStored, StatusFailed, true},
		{StatusStored, StatusLoaded, false},
		{StatusZipped, StatusFailed, false},
		{StatusZipped, StatusStored, false},
		{StatusFailed, StatusLoaded, false},

		// redelivered jobs repeat the same transition
		{StatusStored, StatusStored, true},
		{StatusZipped, StatusZipped, true},
		{StatusFailed, StatusFailed, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestFileStatus_Terminal(t *testing.T) {
	assert.False(t, StatusLoaded.Terminal())
	assert.False(t, StatusStored.Terminal())
	assert.True(t, StatusZipped.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
