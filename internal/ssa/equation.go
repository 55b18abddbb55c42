package ssa

import "fmt"

// Equation is the ordered SSA step sequence of spec.md §4.4: append is
// O(1), iteration is index order, and it offers an optional duplicate-
// assignment check plus the two slicing modes of §4.4/§8's S-series
// testable properties.
type Equation struct {
	steps []Step
}

func New() *Equation { return &Equation{} }

// Append adds a step, preserving program order.
func (eq *Equation) Append(s Step) { eq.steps = append(eq.steps, s) }

// Steps returns the equation's current step list, in order. Callers
// must not mutate the returned slice in place; use Append/Slice/
// SimpleSlice to change the equation.
func (eq *Equation) Steps() []Step { return eq.steps }

func (eq *Equation) Len() int { return len(eq.steps) }

// ErrDuplicateAssignment flags two assignments to the same fully-
// renamed LHS, spec.md §4.4's optional duplicate check.
type ErrDuplicateAssignment struct {
	Name  string
	First int
	Again int
}

func (e *ErrDuplicateAssignment) Error() string {
	return fmt.Sprintf("ssa: %s assigned at steps %d and %d", e.Name, e.First, e.Again)
}

// CheckDuplicateAssignments scans for two assignment steps writing the
// same fully L2-renamed LHS identifier, which would indicate the
// renaming layer failed to bump a value number.
func (eq *Equation) CheckDuplicateAssignments() error {
	seen := map[string]int{}
	for i, s := range eq.steps {
		if s.Kind != KindAssignment || s.LHS == nil {
			continue
		}
		name := s.LHS.String()
		if first, ok := seen[name]; ok {
			return &ErrDuplicateAssignment{Name: name, First: first, Again: i}
		}
		seen[name] = i
	}
	return nil
}
