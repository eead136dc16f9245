package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUnlocked_Readable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.csv")
	require.NoError(t, os.WriteFile(path, []byte("rmnbr\n101\n"), 0644))

	assert.NoError(t, waitUnlocked(path, 3))
}

func TestWaitUnlocked_MissingFailsFast(t *testing.T) {
	err := waitUnlocked(filepath.Join(t.TempDir(), "gone.csv"), 0)

	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
	var lockErr *FileLockError
	assert.False(t, errors.As(err, &lockErr))
}

func TestFileLockError(t *testing.T) {
	cause := os.ErrPermission
	err := &FileLockError{Path: "/data/rooms.xlsx", Err: cause}

	assert.Equal(t, "file is locked: /data/rooms.xlsx", err.Error())
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestIsFileLocked(t *testing.T) {
	assert.False(t, isFileLocked(nil))
	assert.True(t, isFileLocked(&os.PathError{Op: "open", Path: "x", Err: os.ErrPermission}))
	assert.False(t, isFileLocked(&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}))
}
