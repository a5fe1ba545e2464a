package feature

// Set is the immutable bundle of language features available in a given
// edition. Editions are cumulative, so containment reduces to version
// comparison; the type exists to keep call sites talking about feature
// coverage rather than raw version ordering.
type Set struct {
	v Version
}

// Of returns the feature set of an edition.
func Of(v Version) Set {
	return Set{v: v}
}

// FromTag parses a version tag into its feature set.
func FromTag(tag string) (Set, error) {
	v, err := ParseVersion(tag)
	if err != nil {
		return Set{}, err
	}
	return Of(v), nil
}

// Contains reports whether s covers every feature in other.
// Reflexive and transitive by construction.
func (s Set) Contains(other Set) bool {
	return s.v >= other.v
}

// Version returns the edition the set is keyed by.
func (s Set) Version() Version {
	return s.v
}

func (s Set) String() string {
	return s.v.String()
}
