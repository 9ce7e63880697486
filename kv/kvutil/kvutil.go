package kvutil

// NextPrefix returns the smallest key that is lexicographically greater than
// every key carrying the given prefix. It returns nil for an empty or
// maximal prefix, which iterators treat as unbounded.
func NextPrefix(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	next := make([]byte, len(prefix))
	copy(next, prefix)
	for i := len(next) - 1; i >= 0; i-- {
		if next[i] < 0xff {
			next[i]++
			return next[:i+1]
		}
	}
	return nil
}
