package gyroerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/gyroerr"
)

func TestIsMatchesCode(t *testing.T) {
	err := gyroerr.New(gyroerr.ErrCodeInvalidManifest, "missing [deps] table")
	require.True(t, gyroerr.Is(err, gyroerr.ErrCodeInvalidManifest))
	require.False(t, gyroerr.Is(err, gyroerr.ErrCodeNetwork))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := gyroerr.Wrap(gyroerr.ErrCodeNetwork, cause, "fetching %s", "u/a")

	require.ErrorIs(t, err, cause)
	require.Equal(t, gyroerr.ErrCodeNetwork, gyroerr.GetCode(err))
}

func TestExplainedIsExplained(t *testing.T) {
	err := gyroerr.Explained(errors.New("lockfile line 2: unknown tag"))
	require.True(t, gyroerr.Is(err, gyroerr.ErrCodeExplained))
}

func TestUserMessageStripsCode(t *testing.T) {
	err := gyroerr.New(gyroerr.ErrCodeInvalidLockLine, "bad entry on line 3")
	require.Equal(t, "bad entry on line 3", gyroerr.UserMessage(err))

	plain := errors.New("boom")
	require.Equal(t, "boom", gyroerr.UserMessage(plain))
}

func TestCycleErrorMessage(t *testing.T) {
	err := &gyroerr.CycleError{Aliases: []string{"a", "b"}}
	require.Contains(t, err.Error(), "a")
	require.Contains(t, err.Error(), "b")
}
