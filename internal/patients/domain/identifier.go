package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// IDPrefix is prepended to every allocated counter value.
	IDPrefix = "P-"

	// FirstSequence is the counter value of the first registration.
	FirstSequence = 101
)

// FormatID renders a counter value as a patient identifier.
func FormatID(seq int) string {
	return IDPrefix + strconv.Itoa(seq)
}

// ParseID is the inverse of FormatID: it extracts the counter value from a
// patient identifier.
func ParseID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok {
		return 0, fmt.Errorf("identifier %q: missing %q prefix", id, IDPrefix)
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("identifier %q: %w", id, err)
	}
	return seq, nil
}
