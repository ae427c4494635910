//go:build !(darwin || freebsd || linux || netbsd) || android

package module

import "github.com/pkg/errors"

// OpenNative is not available on this platform, use a script module instead
func OpenNative(path string) (Library, error) {
	return nil, errors.Wrap(ErrUnsupportedPlatform, path)
}
