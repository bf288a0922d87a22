package session

import (
	"fmt"
	"strconv"
	"strings"
)

const tabPrefix = "Tab #"

// TabName formats the generated name for n
func TabName(n int) string {
	return fmt.Sprintf("%s%d", tabPrefix, n)
}

// IsTabName reports whether name looks like a generated name
func IsTabName(name string) bool {
	rest, ok := strings.CutPrefix(name, tabPrefix)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0
}

// nextFreeName always scans from 1 so freed numbers are reused.
func nextFreeName(taken func(string) bool) string {
	for n := 1; ; n++ {
		name := TabName(n)
		if !taken(name) {
			return name
		}
	}
}
