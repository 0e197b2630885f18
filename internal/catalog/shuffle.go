package catalog

// Shuffle3 orders three items deterministically by key: element key mod 3
// comes first, then element (key div 3) mod 2 of the remainder, then the
// last one. Keys 0 through 5 cover all six orderings, and key 0 is the
// identity. The input is not modified.
func Shuffle3(key int, items []string) []string {
	if len(items) != 3 {
		out := make([]string, len(items))
		copy(out, items)
		return out
	}
	if key < 0 {
		key = -key
	}

	rest := []string{items[0], items[1], items[2]}
	out := make([]string, 0, 3)

	i := key % 3
	out = append(out, rest[i])
	rest = append(rest[:i], rest[i+1:]...)

	j := (key / 3) % 2
	out = append(out, rest[j])
	rest = append(rest[:j], rest[j+1:]...)

	return append(out, rest[0])
}
