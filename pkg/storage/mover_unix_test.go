//go:build unix

package storage

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestMoverCrossDevice(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	modTime := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	afero.WriteFile(fs, "/src/movie.mkv", []byte("frames"), 0600)
	fs.Chtimes("/src/movie.mkv", modTime, modTime)

	mover := NewMover(fs)
	mover.rename = func(oldname, newname string) error {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EXDEV}
	}

	dst, err := mover.Move(ctx, "/src/movie.mkv", "/src/Videos")
	if err != nil {
		t.Fatalf("Move() across devices error = %v", err)
	}

	content, err := afero.ReadFile(fs, dst)
	if err != nil || string(content) != "frames" {
		t.Fatalf("copied content = %q, err = %v", content, err)
	}
	info, err := fs.Stat(dst)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.ModTime().Equal(modTime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), modTime)
	}
	if exists, _ := afero.Exists(fs, "/src/movie.mkv"); exists {
		t.Error("source should be removed after the copy")
	}
}

