package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// invalidChars may not appear in a Windows path outside its volume name
const invalidChars = `<>:"|?*`

// NormalizePath cleans a source path, keeping the leading \\ of a UNC path
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)
	if isUNC(path) && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\`)
	}
	return normalized
}

// ValidatePath rejects empty paths, and on Windows paths holding characters
// the filesystem refuses
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	if runtime.GOOS == "windows" {
		rest := path[len(filepath.VolumeName(path)):]
		if i := strings.IndexAny(rest, invalidChars); i >= 0 {
			return &PathError{Path: path, Message: "path contains invalid character: " + string(rest[i])}
		}
	}

	return nil
}

func isUNC(path string) bool {
	return runtime.GOOS == "windows" && (strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//"))
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
