package cli

import (
	"errors"
	"io"
	"os"
	"strings"
)

var errNoPipedInput = errors.New("stdin is not a pipe or file")

// isStdin reports whether f carries redirected input rather than a terminal.
func isStdin(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeNamedPipe != 0 || fi.Mode().IsRegular()
}

// readPiped returns the trimmed contents of r. Terminal stdin is rejected
// so the command never blocks waiting for keyboard input.
func readPiped(r io.Reader) (string, error) {
	if r == nil {
		return "", errNoPipedInput
	}
	if f, ok := r.(*os.File); ok && !isStdin(f) {
		return "", errNoPipedInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
