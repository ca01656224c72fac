// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTarget lets tests script CreateDir/Stat behavior.
type stubTarget struct {
	*TargetMemory
	createDirErr error
	statDir      bool
	createCalls  int
}

func (s *stubTarget) CreateDir(path string, mode fs.FileMode) error {
	s.createCalls++
	if s.createDirErr != nil {
		return s.createDirErr
	}
	return s.TargetMemory.CreateDir(path, mode)
}

func (s *stubTarget) Stat(path string) (fs.FileInfo, error) {
	if s.statDir {
		return &memoryFileInfo{name: path, mode: fs.ModeDir | 0750}, nil
	}
	return s.TargetMemory.Stat(path)
}

func TestEnsureDir(t *testing.T) {
	t.Run("creates and records", func(t *testing.T) {
		tm := &stubTarget{TargetMemory: NewTargetMemory()}
		created := &createdDirs{}

		require.NoError(t, ensureDir(tm, "out/a/b", 0750, created))
		assert.True(t, created.seen("out/a/b"))

		// second call skips the syscall entirely
		require.NoError(t, ensureDir(tm, "out/a/b", 0750, created))
		assert.Equal(t, 1, tm.createCalls)
	})

	t.Run("absorbs racing creation", func(t *testing.T) {
		// CreateDir fails, but by the time we re-probe the directory exists:
		// a concurrent task won the race and that counts as success
		tm := &stubTarget{
			TargetMemory: NewTargetMemory(),
			createDirErr: errors.New("mkdir: file exists"),
			statDir:      true,
		}
		created := &createdDirs{}
		require.NoError(t, ensureDir(tm, "out/racy", 0750, created))
		assert.True(t, created.seen("out/racy"))
	})

	t.Run("propagates genuine failure", func(t *testing.T) {
		tm := &stubTarget{
			TargetMemory: NewTargetMemory(),
			createDirErr: errors.New("mkdir: permission denied"),
		}
		err := ensureDir(tm, "out/denied", 0750, &createdDirs{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
		assert.False(t, (&createdDirs{}).seen("out/denied"))
	})
}

func TestTargetMemoryCreateFile(t *testing.T) {
	tm := NewTargetMemory()

	n, err := tm.CreateFile("out/a.txt", strings.NewReader("hello"), 0640, false, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	content, ok := tm.Content("out/a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(content))

	// no overwrite
	_, err = tm.CreateFile("out/a.txt", strings.NewReader("bye"), 0640, false, -1)
	require.Error(t, err)

	// overwrite
	_, err = tm.CreateFile("out/a.txt", strings.NewReader("bye"), 0640, true, -1)
	require.NoError(t, err)
	content, _ = tm.Content("out/a.txt")
	assert.Equal(t, "bye", string(content))

	// size limit
	_, err = tm.CreateFile("out/b.txt", strings.NewReader("too large"), 0640, false, 4)
	require.ErrorIs(t, err, io.ErrShortWrite)
}

func TestTargetMemoryCreateDir(t *testing.T) {
	tm := NewTargetMemory()
	require.NoError(t, tm.CreateDir("out/a/b", 0750))

	fi, err := tm.Stat("out/a")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// file in the way
	_, err = tm.CreateFile("out/file", strings.NewReader("x"), 0640, false, -1)
	require.NoError(t, err)
	require.Error(t, tm.CreateDir("out/file", 0750))
}

func TestLimitWriter(t *testing.T) {
	var buf bytes.Buffer
	w := limitWriter(&buf, 5)

	n, err := w.Write([]byte("1234"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// hits the limit mid-write
	n, err = w.Write([]byte("5678"))
	assert.Equal(t, 1, n)
	require.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, "12345", buf.String())

	// unlimited passthrough
	var buf2 bytes.Buffer
	w2 := limitWriter(&buf2, -1)
	_, err = w2.Write(bytes.Repeat([]byte("x"), 1<<16))
	require.NoError(t, err)
}
