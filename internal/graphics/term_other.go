//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package graphics

import "errors"

func makeRaw(int) (func() error, error) {
	return nil, errors.New("raw terminal mode not supported on this platform")
}
