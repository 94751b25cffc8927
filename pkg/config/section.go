package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// section renders one block of a configuration dump.
type section struct {
	b strings.Builder
}

func newSection(title string) *section {
	s := &section{}
	fmt.Fprintf(&s.b, "\n--- %s ---\n", title)
	return s
}

func (s *section) field(key string, value any) *section {
	fmt.Fprintf(&s.b, "  %s: %v\n", key, value)
	return s
}

func (s *section) String() string {
	return s.b.String()
}

// positive fails with "<name> must be greater than 0" when d is not set.
func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be greater than 0", name)
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var errNotConfigured = errors.New("is not configured")
