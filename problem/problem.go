package problem

import (
	"errors"
	"fmt"
)

// List collects problems so validation can report all of them at once
// instead of stopping at the first error.
type List struct {
	errors []error
}

// Add notes a problem formatted with fmt.Errorf.
func (p *List) Add(format string, args ...interface{}) *List {
	p.errors = append(p.errors, fmt.Errorf(format, args...))
	return p
}

// Errors returns all noted problems.
func (p *List) Errors() []error {
	return p.errors
}

// Any reports whether a problem was noted.
func (p *List) Any() bool {
	return len(p.errors) > 0
}

// Err joins all problems into a single error, nil when there are none.
func (p *List) Err() error {
	return errors.Join(p.errors...)
}
