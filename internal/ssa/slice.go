package ssa

// SliceOptions configures Slice's behavior beyond the baseline
// liveness-from-assertions analysis (spec.md §4.4).
type SliceOptions struct {
	// DropDeadAssumes additionally removes assume steps whose
	// condition shares no symbol with anything already kept, beyond
	// the default of always retaining every assume.
	DropDeadAssumes bool
}

func markLive(live map[string]bool, s *Step) {
	for _, sym := range s.InvolvedInputs() {
		live[sym.String()] = true
	}
}

func anyLive(live map[string]bool, s *Step) bool {
	for _, sym := range s.InvolvedInputs() {
		if live[sym.String()] {
			return true
		}
	}
	return false
}

// Slice removes assignment steps whose LHS is never used, directly or
// transitively, by a kept assert or assume, walking the equation
// backward so control-dependency order is preserved in the result
// (spec.md §4.4: "slicing ... remove steps whose LHS is never used
// transitively by an assertion/assume ... deterministic and preserve
// control-dependency ordering").
func (eq *Equation) Slice(opts SliceOptions) *Equation {
	live := map[string]bool{}
	keep := make([]bool, len(eq.steps))

	for i := len(eq.steps) - 1; i >= 0; i-- {
		s := &eq.steps[i]
		switch s.Kind {
		case KindAssert, KindRenumber:
			keep[i] = true
			markLive(live, s)
		case KindAssume:
			if !opts.DropDeadAssumes || anyLive(live, s) {
				keep[i] = true
				markLive(live, s)
			}
		case KindAssignment:
			name := ""
			if s.LHS != nil {
				name = s.LHS.String()
			}
			if live[name] {
				keep[i] = true
				markLive(live, s)
			}
		}
	}

	out := New()
	for i, s := range eq.steps {
		if keep[i] {
			out.Append(s)
		}
	}
	return out
}

// SimpleSlice removes only assignment steps whose LHS is never read
// anywhere else in the equation, leaving every assume/assert step
// untouched (spec.md §4.4: "A separate simple-slice removes only
// assignments whose LHS is never read").
func (eq *Equation) SimpleSlice() *Equation {
	read := map[string]bool{}
	for i := range eq.steps {
		markLive(read, &eq.steps[i])
	}

	out := New()
	for _, s := range eq.steps {
		if s.Kind == KindAssignment && s.LHS != nil && !read[s.LHS.String()] {
			continue
		}
		out.Append(s)
	}
	return out
}
