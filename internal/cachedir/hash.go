package cachedir

import "hash/fnv"

// HashEquation computes the 64-bit key a LaTeX equation is cached under.
// FNV-1a is deterministic across runs and platforms, which the directory
// addressing depends on: the same equation must map to the same
// latex_<hash> directory in every session.
func HashEquation(equation string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(equation))
	return h.Sum64()
}
