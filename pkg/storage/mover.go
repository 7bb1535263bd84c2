package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// MoveError describes a file that could not be moved into its destination
type MoveError struct {
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("failed to move %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// IsMoveError reports whether err is a *MoveError
func IsMoveError(err error) bool {
	var e *MoveError
	return errors.As(err, &e)
}

// Mover moves files within a filesystem. A rename that fails because source
// and target live on different devices falls back to copy and remove.
type Mover struct {
	fs     afero.Fs
	rename func(oldname, newname string) error
}

// NewMover creates a mover on fs
func NewMover(fs afero.Fs) *Mover {
	return &Mover{fs: fs, rename: fs.Rename}
}

// EnsureDir creates dir and any missing parents. Existing directories are fine.
func (m *Mover) EnsureDir(ctx context.Context, dir string) error {
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Move moves src into dir, keeping its base name, and returns the target path.
// An existing file with the same name in dir is replaced.
func (m *Mover) Move(ctx context.Context, src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))

	if err := m.EnsureDir(ctx, dir); err != nil {
		return dst, &MoveError{Src: src, Dst: dst, Err: err}
	}

	err := m.rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !isEXDEV(err) {
		return dst, &MoveError{Src: src, Dst: dst, Err: err}
	}

	if err := m.copyAndRemove(src, dst); err != nil {
		return dst, &MoveError{Src: src, Dst: dst, Err: err}
	}
	return dst, nil
}

// copyAndRemove copies src to dst preserving mode and modification time,
// then removes src. A partial dst is removed on failure.
func (m *Mover) copyAndRemove(src, dst string) error {
	info, err := m.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	in, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := m.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		m.fs.Remove(dst)
		return fmt.Errorf("failed to copy: %w", err)
	}
	if err := out.Close(); err != nil {
		m.fs.Remove(dst)
		return fmt.Errorf("failed to close target: %w", err)
	}

	if err := m.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}

	if err := m.fs.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}
