package util

type (
	// Set holds unique comparable values
	Set[K comparable] map[K]struct{}
)

// SetOf creates a Set holding the given values
func SetOf[K comparable](values ...K) Set[K] {
	s := make(Set[K], len(values))
	s.AddAll(values...)
	return s
}

// Add inserts a value into the Set
func (s Set[K]) Add(v K) {
	s[v] = struct{}{}
}

// AddAll inserts every given value into the Set
func (s Set[K]) AddAll(values ...K) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Remove deletes a value from the Set
func (s Set[K]) Remove(v K) {
	delete(s, v)
}

// Contains reports whether the value is in the Set
func (s Set[K]) Contains(v K) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the Set
func (s Set[K]) Len() int {
	return len(s)
}

// IsEmpty reports whether the Set holds no values
func (s Set[K]) IsEmpty() bool {
	return len(s) == 0
}

// Values returns the Set contents in no particular order
func (s Set[K]) Values() []K {
	res := make([]K, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	return res
}
