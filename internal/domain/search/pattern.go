package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const literalSpecials = `.*+?^${}()|[]\`

// globSpecials leaves '*' and '?' alone; they are translated afterwards.
const globSpecials = `.+^${}()|[]\`

func escape(s, specials string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// compileQuery builds the matcher for opts. Whole-word only applies to
// literal queries.
func compileQuery(opts Options, timeout time.Duration) (*regexp2.Regexp, error) {
	flags := regexp2.ECMAScript
	if !opts.MatchCase {
		flags |= regexp2.IgnoreCase
	}

	expr := opts.Query
	if !opts.Regex {
		expr = escape(opts.Query, literalSpecials)
		if opts.WholeWord {
			expr = `\b` + expr + `\b`
		}
	}

	re, err := regexp2.Compile(expr, flags)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", opts.Query, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// globToRegexp translates one filter glob: '**' and '*' become ".*", '?'
// becomes '.', and the result is anchored at both ends.
func globToRegexp(glob string) string {
	expr := escape(glob, globSpecials)
	expr = strings.ReplaceAll(expr, "**", "*")
	expr = strings.ReplaceAll(expr, "*", ".*")
	expr = strings.ReplaceAll(expr, "?", ".")
	return "^" + expr + "$"
}

// PathFilter decides which paths a search visits
type PathFilter struct {
	include []*regexp2.Regexp
	exclude []*regexp2.Regexp
}

// NewPathFilter compiles comma-separated include and exclude glob lists.
// Empty entries are ignored; an empty include list admits every path.
func NewPathFilter(include, exclude string) (*PathFilter, error) {
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}
	return &PathFilter{include: inc, exclude: exc}, nil
}

func compileGlobs(list string) ([]*regexp2.Regexp, error) {
	var out []*regexp2.Regexp
	for _, glob := range strings.Split(list, ",") {
		glob = strings.TrimSpace(glob)
		if glob == "" {
			continue
		}
		re, err := regexp2.Compile(globToRegexp(glob), regexp2.ECMAScript|regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Match reports whether path passes the include list and misses every
// exclude pattern.
func (f *PathFilter) Match(path string) bool {
	if len(f.include) > 0 && !anyMatch(f.include, path) {
		return false
	}
	return !anyMatch(f.exclude, path)
}

func anyMatch(patterns []*regexp2.Regexp, path string) bool {
	for _, re := range patterns {
		if ok, err := re.MatchString(path); err == nil && ok {
			return true
		}
	}
	return false
}
