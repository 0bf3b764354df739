package carddef

import "fmt"

// builtinChecks are the check functions the builtin manifests reference.
// A manifest naming a check with no registered function fails registration,
// keeping manifests and Go code in parity.
func builtinChecks() map[string]CheckFunc {
	return map[string]CheckFunc{
		"positive":     checkPositive,
		"non-negative": checkNonNegative,
		"dof-code":     checkDOFCode,
	}
}

func checkPositive(v any) error {
	switch n := v.(type) {
	case int64:
		if n <= 0 {
			return fmt.Errorf("must be positive, got %d", n)
		}
	case float64:
		if n <= 0 {
			return fmt.Errorf("must be positive, got %g", n)
		}
	default:
		return fmt.Errorf("positive check does not apply to %T", v)
	}
	return nil
}

func checkNonNegative(v any) error {
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return fmt.Errorf("must not be negative, got %d", n)
		}
	case float64:
		if n < 0 {
			return fmt.Errorf("must not be negative, got %g", n)
		}
	default:
		return fmt.Errorf("non-negative check does not apply to %T", v)
	}
	return nil
}

// checkDOFCode accepts 0 or a run of unique degree-of-freedom digits 1..6,
// e.g. 123 or 123456. Any other digit or a repeated digit is rejected.
func checkDOFCode(v any) error {
	n, ok := v.(int64)
	if !ok {
		return fmt.Errorf("dof-code check requires an integer, got %T", v)
	}
	if n == 0 {
		return nil
	}
	if n < 0 {
		return fmt.Errorf("dof code may not be negative, got %d", n)
	}
	var seen [7]bool
	for rest := n; rest > 0; rest /= 10 {
		d := rest % 10
		if d < 1 || d > 6 {
			return fmt.Errorf("dof code %d contains digit %d outside 1..6", n, d)
		}
		if seen[d] {
			return fmt.Errorf("dof code %d repeats digit %d", n, d)
		}
		seen[d] = true
	}
	return nil
}
