// Package validate implements the IATI business rules the import pipeline
// enforces before anything is offered for merge. Field-level validators check
// one sub-entity in isolation and are safe to run in parallel; group
// validators check invariants across siblings. Errors block auto-selection,
// warnings never do.
package validate

import "fmt"

// Outcome is the result of validating one entity or one sibling group.
type Outcome struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether no errors were raised. Warnings do not affect it.
func (o Outcome) Valid() bool { return len(o.Errors) == 0 }

func (o *Outcome) errorf(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
}

func (o *Outcome) warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// merge folds another outcome into this one, prefixing its messages so the
// origin entity stays identifiable after aggregation.
func (o *Outcome) merge(prefix string, other Outcome) {
	for _, e := range other.Errors {
		o.Errors = append(o.Errors, prefix+": "+e)
	}
	for _, w := range other.Warnings {
		o.Warnings = append(o.Warnings, prefix+": "+w)
	}
}
