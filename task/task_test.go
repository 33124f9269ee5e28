package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndWaitSuccess(t *testing.T) {
	r := NewRunner()

	tk, err := r.Start("process", func() (string, error) {
		return "3 files processed", nil
	})
	require.NoError(t, err)
	require.NoError(t, tk.Wait())

	snap := tk.Snapshot()
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, "3 files processed", snap.Message)
	require.NotNil(t, snap.FinishedAt)
}

func TestStartFailure(t *testing.T) {
	r := NewRunner()

	tk, err := r.Start("report", func() (string, error) {
		return "", errors.New("template file missing")
	})
	require.NoError(t, err)
	assert.Error(t, tk.Wait())

	snap := tk.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "template file missing", snap.Message)
}

func TestSingleFlightPerKind(t *testing.T) {
	r := NewRunner()
	release := make(chan struct{})

	first, err := r.Start("collect", func() (string, error) {
		<-release
		return "", nil
	})
	require.NoError(t, err)

	_, err = r.Start("collect", func() (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrBusy)

	// A different kind is not blocked.
	other, err := r.Start("process", func() (string, error) { return "", nil })
	require.NoError(t, err)
	require.NoError(t, other.Wait())

	close(release)
	require.NoError(t, first.Wait())

	// After completion the kind is free again.
	again, err := r.Start("collect", func() (string, error) { return "", nil })
	require.NoError(t, err)
	require.NoError(t, again.Wait())
}

func TestPanicBecomesFailure(t *testing.T) {
	r := NewRunner()

	tk, err := r.Start("process", func() (string, error) {
		panic("boom")
	})
	require.NoError(t, err)
	assert.Error(t, tk.Wait())
	assert.Equal(t, StateFailed, tk.Snapshot().State)
}

func TestGetAndList(t *testing.T) {
	r := NewRunner()

	tk, err := r.Start("collect", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.NoError(t, tk.Wait())

	got, ok := r.Get(tk.ID())
	require.True(t, ok)
	assert.Equal(t, tk.ID(), got.ID())

	snaps := r.List()
	require.Len(t, snaps, 1)
	assert.Equal(t, "collect", snaps[0].Kind)
}
