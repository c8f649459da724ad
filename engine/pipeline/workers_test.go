package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobSystemRejectsBadSizes(t *testing.T) {
	_, err := newJobSystem(0, 4)
	require.ErrorIs(t, err, ErrNoWorkers)

	_, err = newJobSystem(1, -1)
	require.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemTrySubmitNeverBlocksWhenSaturated(t *testing.T) {
	js, err := newJobSystem(1, 1)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})

	// Hold the single worker on the first task.
	require.True(t, js.trySubmit(jobTask{run: func() {
		close(started)
		<-release
	}}))
	<-started

	// Fill the one buffered slot while the worker is held.
	require.True(t, js.trySubmit(jobTask{run: func() {}}))

	// Saturated on both ends: the submit must refuse, not block.
	require.False(t, js.trySubmit(jobTask{run: func() {}}))

	close(release)
	js.shutdown()
}
