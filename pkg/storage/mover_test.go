package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestMoverMove(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesDirectoryAndMoves", func(t *testing.T) {
		tempDir := t.TempDir()
		src := filepath.Join(tempDir, "a.jpg")
		if err := os.WriteFile(src, []byte("image"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		mover := NewMover(afero.NewOsFs())
		dst, err := mover.Move(ctx, src, filepath.Join(tempDir, "AETH_Images"))
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}

		if dst != filepath.Join(tempDir, "AETH_Images", "a.jpg") {
			t.Errorf("Move() dst = %s", dst)
		}
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Error("source should no longer exist")
		}
		content, err := os.ReadFile(dst)
		if err != nil || string(content) != "image" {
			t.Errorf("destination content = %q, err = %v", content, err)
		}
	})

	t.Run("ExistingDirectory", func(t *testing.T) {
		tempDir := t.TempDir()
		dir := filepath.Join(tempDir, "AETH_Images")
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		src := filepath.Join(tempDir, "b.png")
		os.WriteFile(src, []byte("png"), 0644)

		if _, err := NewMover(afero.NewOsFs()).Move(ctx, src, dir); err != nil {
			t.Fatalf("Move() into existing dir error = %v", err)
		}
	})

	t.Run("OverwritesSameName", func(t *testing.T) {
		tempDir := t.TempDir()
		dir := filepath.Join(tempDir, "Backups")
		os.Mkdir(dir, 0755)
		os.WriteFile(filepath.Join(dir, "c.bak"), []byte("old"), 0644)
		src := filepath.Join(tempDir, "c.bak")
		os.WriteFile(src, []byte("new"), 0644)

		dst, err := NewMover(afero.NewOsFs()).Move(ctx, src, dir)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		content, _ := os.ReadFile(dst)
		if string(content) != "new" {
			t.Errorf("destination content = %q, want new", content)
		}
	})

	t.Run("DirectoryBlockedByFile", func(t *testing.T) {
		tempDir := t.TempDir()
		blocker := filepath.Join(tempDir, "AETH_Images")
		os.WriteFile(blocker, []byte("not a dir"), 0644)
		src := filepath.Join(tempDir, "a.jpg")
		os.WriteFile(src, []byte("image"), 0644)

		_, err := NewMover(afero.NewOsFs()).Move(ctx, src, blocker)
		if err == nil {
			t.Fatal("Move() should fail when the destination folder is a file")
		}
		if !IsMoveError(err) {
			t.Errorf("error should be a *MoveError, got %T", err)
		}
		if _, err := os.Stat(src); err != nil {
			t.Error("source should remain in place after a failed move")
		}
	})

	t.Run("ReadOnlyFs", func(t *testing.T) {
		base := afero.NewMemMapFs()
		afero.WriteFile(base, "/src/a.jpg", []byte("x"), 0644)

		_, err := NewMover(afero.NewReadOnlyFs(base)).Move(ctx, "/src/a.jpg", "/src/Images")
		if err == nil {
			t.Fatal("Move() should fail on a read-only filesystem")
		}
	})
}

func TestMoverRenameFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/src/a.txt", []byte("x"), 0644)

	mover := NewMover(fs)
	mover.rename = func(oldname, newname string) error {
		return os.ErrPermission
	}

	_, err := mover.Move(context.Background(), "/src/a.txt", "/src/Docs")
	if err == nil {
		t.Fatal("Move() should surface rename failures")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("error should wrap os.ErrPermission, got %v", err)
	}
	if exists, _ := afero.Exists(fs, "/src/a.txt"); !exists {
		t.Error("source should remain after a failed rename")
	}
}
