package prompt

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/casemark/casedev-go/pkg/value"
)

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned after repeated unparsable answers.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
)

// Option configures a Builder.
type Option func(*Builder)

// WithDriver replaces the terminal driver.
func WithDriver(driver Driver) Option {
	return func(b *Builder) {
		if driver != nil {
			b.driver = driver
		}
	}
}

// WithAttempts bounds how often an unparsable answer is asked again.
func WithAttempts(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.attempts = n
		}
	}
}

// WithFileOpener sets how answers to file fields are turned into uploads.
func WithFileOpener(open func(path string) (value.File, error)) Option {
	return func(b *Builder) {
		if open != nil {
			b.open = open
		}
	}
}

func openFile(path string) (value.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return value.File{}, err
	}
	return value.File{Name: filepath.Base(path), Body: f}, nil
}
