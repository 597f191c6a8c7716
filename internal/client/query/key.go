package query

import "strings"

// Key addresses one cacheable read, e.g. Key{"events", "all"} or
// Key{"blogs", id}. Reads are issued as GET {base}/{segments}.
type Key []string

func (k Key) String() string { return strings.Join(k, "/") }

// HasPrefix reports whether k starts with every segment of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ParseKey splits "events/all" into Key{"events", "all"}.
func ParseKey(s string) Key {
	var k Key
	for _, part := range strings.Split(strings.Trim(s, "/"), "/") {
		if part != "" {
			k = append(k, part)
		}
	}
	return k
}
