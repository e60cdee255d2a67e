package grocery

// CheckedSet holds normalized names of checked ingredients. The zero value
// is an empty set.
type CheckedSet map[string]struct{}

// NewCheckedSet normalizes names into a set.
func NewCheckedSet(names ...string) CheckedSet {
	s := make(CheckedSet, len(names))
	for _, n := range names {
		s[Normalize(n)] = struct{}{}
	}
	return s
}

// Has reports whether name, in any casing or padding, is checked.
func (s CheckedSet) Has(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// ToggleChecked flips the checked state of itemName in the stored list of
// originally-cased names. Unchecking removes every case variant; checking
// appends itemName as given.
func ToggleChecked(names []string, itemName string) []string {
	target := Normalize(itemName)
	out := make([]string, 0, len(names)+1)
	found := false
	for _, n := range names {
		if Normalize(n) == target {
			found = true
			continue
		}
		out = append(out, n)
	}
	if !found {
		out = append(out, itemName)
	}
	return out
}
