package filter

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidPattern is returned when a regex filter pattern does not compile
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError describes a pattern that failed to compile
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

// Is reports ErrInvalidPattern so callers can use errors.Is
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

func (e *PatternError) Unwrap() error { return e.Err }

// Kind identifies a filter variant. The values double as the type tags
// written to the filter record file.
type Kind string

const (
	// KindExtension matches on the file suffix
	KindExtension Kind = "ExtensionFilter"
	// KindSize matches on the file size in bytes
	KindSize Kind = "SizeFilter"
	// KindAge matches on the modification age in whole days
	KindAge Kind = "DateFilter"
	// KindRegex matches a pattern against the base name
	KindRegex Kind = "CustomRegexFilter"
)

// MB is the number of bytes in a megabyte, the unit size bounds are persisted in
const MB = 1024 * 1024

// Bound returns a pointer to v for use as a size bound
func Bound(v int64) *int64 {
	return &v
}

// ExtensionParams holds the lowercase extensions, leading dot included
type ExtensionParams struct {
	Extensions []string
}

// SizeParams holds inclusive size bounds. A nil bound is unconstrained.
type SizeParams struct {
	MinSize *int64
	MaxSize *int64
}

// AgeParams holds the maximum age in days
type AgeParams struct {
	DaysAgo int
}

// RegexParams holds the source pattern and its case-insensitive compilation
type RegexParams struct {
	Pattern string
	re      *regexp.Regexp
}

// Filter is a named predicate paired with a destination folder.
// Exactly one of the params fields is set, selected by Kind.
type Filter struct {
	Name        string
	Destination string
	Kind        Kind

	Extension *ExtensionParams
	Size      *SizeParams
	Age       *AgeParams
	Regex     *RegexParams
}

// NewExtension creates a filter matching any of the given extensions, case-insensitively
func NewExtension(destination string, extensions ...string) *Filter {
	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		lowered[i] = strings.ToLower(ext)
	}

	name := "ByExtension_" + strings.Join(extensions, "_")
	return &Filter{
		Name:        name,
		Destination: orName(destination, name),
		Kind:        KindExtension,
		Extension:   &ExtensionParams{Extensions: lowered},
	}
}

// NewSize creates a filter matching files whose size lies within [min, max]
func NewSize(name, destination string, minSize, maxSize *int64) *Filter {
	return &Filter{
		Name:        name,
		Destination: orName(destination, name),
		Kind:        KindSize,
		Size:        &SizeParams{MinSize: minSize, MaxSize: maxSize},
	}
}

// NewAge creates a filter matching files modified within the last daysAgo days
func NewAge(name, destination string, daysAgo int) *Filter {
	return &Filter{
		Name:        name,
		Destination: orName(destination, name),
		Kind:        KindAge,
		Age:         &AgeParams{DaysAgo: daysAgo},
	}
}

// NewRegex creates a filter searching pattern in the file's base name.
// Matching is case-insensitive.
func NewRegex(name, destination, pattern string) (*Filter, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	return &Filter{
		Name:        name,
		Destination: orName(destination, name),
		Kind:        KindRegex,
		Regex:       &RegexParams{Pattern: pattern, re: re},
	}, nil
}

// DestinationFolder returns the folder name files matching this filter go to
func (f *Filter) DestinationFolder(prefix string) string {
	return prefix + f.Destination
}

// Matches reports whether the file at path satisfies the filter.
// Size and age variants stat the file through fsys on every call; now is
// the reference time for the age variant.
func (f *Filter) Matches(fsys afero.Fs, path string, now time.Time) (bool, error) {
	switch f.Kind {
	case KindExtension:
		return slices.Contains(f.Extension.Extensions, suffix(filepath.Base(path))), nil

	case KindSize:
		info, err := fsys.Stat(path)
		if err != nil {
			return false, fmt.Errorf("failed to stat file: %w", err)
		}
		size := info.Size()
		if f.Size.MinSize != nil && size < *f.Size.MinSize {
			return false, nil
		}
		if f.Size.MaxSize != nil && size > *f.Size.MaxSize {
			return false, nil
		}
		return true, nil

	case KindAge:
		info, err := fsys.Stat(path)
		if err != nil {
			return false, fmt.Errorf("failed to stat file: %w", err)
		}
		return elapsedDays(now.Sub(info.ModTime())) <= f.Age.DaysAgo, nil

	case KindRegex:
		if f.Regex.re == nil {
			return false, fmt.Errorf("regex filter %q was not compiled", f.Name)
		}
		return f.Regex.re.MatchString(filepath.Base(path)), nil

	default:
		return false, fmt.Errorf("unknown filter kind: %s", f.Kind)
	}
}

// String returns "name -> destination"
func (f *Filter) String() string {
	return f.Name + " -> " + f.Destination
}

// suffix returns the lowercase final extension of name. Leading-dot names
// such as ".bashrc" and names ending in a dot have no suffix.
func suffix(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// elapsedDays floors d to whole days; 23h counts as 0 days
func elapsedDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := d / day
	if d < 0 && d%day != 0 {
		days--
	}
	return int(days)
}

func orName(destination, name string) string {
	if destination == "" {
		return name
	}
	return destination
}
