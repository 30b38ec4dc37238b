package utils

import "fmt"

// EnumValidator rejects any value outside allowed.
func EnumValidator[T ~string](allowed ...T) func(string) error {
	set := map[string]struct{}{}
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; ok {
			return nil
		}
		return fmt.Errorf("value %q is not one of %v", s, allowed)
	}
}
