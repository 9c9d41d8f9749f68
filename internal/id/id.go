package id

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// New returns a random positive identifier.
func New() (int64, error) {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("generating id: %w", err)
		}
		// Keep ids within the range a JSON number represents exactly.
		n := int64(binary.BigEndian.Uint64(b[:]) & (1<<53 - 1))
		if n > 0 {
			return n, nil
		}
	}
}

func Parse(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", s)
	}
	return n, nil
}

// ParseList parses a comma-separated id list. Empty input yields an empty list.
func ParseList(s string) ([]int64, error) {
	ids := []int64{}
	if strings.TrimSpace(s) == "" {
		return ids, nil
	}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, n)
	}
	return ids, nil
}

func Format(n int64) string {
	return strconv.FormatInt(n, 10)
}
