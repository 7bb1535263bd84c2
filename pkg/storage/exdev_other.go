//go:build !unix && !windows

package storage

func isEXDEV(err error) bool {
	return false
}
