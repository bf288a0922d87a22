// Package keybind parses action keybinding expressions into the numeric
// encoding used by the editor widget.
//
// The grammar is a closed subset of what hosts send:
//
//	expr  := term (('|' | '+') term)*
//	term  := 'chord' '(' expr ',' expr ')' | name | integer
//
// Names may carry a namespace ("Mod.CtrlCmd", "Key.KeyS", also the longer
// "KeyMod." / "KeyCode." and a leading "monaco."). Without one, modifiers
// and their aliases win over key names, and single letters and digits are
// accepted ("Ctrl+Shift+S").
package keybind

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrUnknownToken = errors.New("unknown keybinding token")
	ErrSyntax       = errors.New("malformed keybinding")
)

// Binding is an encoded keybinding. The low 16 bits hold the first
// keypress (key code plus modifier bits); the high 16 bits hold the second
// keypress of a chord.
type Binding uint32

// Chord combines two keypresses into one binding
func Chord(first, second Binding) Binding {
	return first | (second&0xFFFF)<<16
}

// First returns the first keypress
func (b Binding) First() Binding { return b & 0xFFFF }

// Second returns the chord's second keypress, zero when there is none
func (b Binding) Second() Binding { return b >> 16 }

// IsChord reports whether b needs two keypresses
func (b Binding) IsChord() bool { return b.Second() != 0 }

func (b Binding) String() string {
	if b.IsChord() {
		return formatPress(b.First()) + " " + formatPress(b.Second())
	}
	return formatPress(b)
}

func formatPress(p Binding) string {
	var parts []string
	if p&CtrlCmd != 0 {
		parts = append(parts, "Ctrl")
	}
	if p&Shift != 0 {
		parts = append(parts, "Shift")
	}
	if p&Alt != 0 {
		parts = append(parts, "Alt")
	}
	if p&WinCtrl != 0 {
		parts = append(parts, "WinCtrl")
	}
	code := p &^ modMask
	if name, ok := keyNames[code]; ok {
		parts = append(parts, name)
	} else {
		parts = append(parts, strconv.Itoa(int(code)))
	}
	return strings.Join(parts, "+")
}

// Parse decodes a keybinding expression
func Parse(expr string) (Binding, error) {
	p := &parser{tokens: tokenize(expr)}
	if len(p.tokens) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	b, err := p.expr()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.peek())
	}
	return b, nil
}

// MustParse is Parse for built-in tables; it panics on error
func MustParse(expr string) Binding {
	b, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return b
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *parser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("%w: expected %q, got %q", ErrSyntax, tok, got)
	}
	return nil
}

func (p *parser) expr() (Binding, error) {
	b, err := p.term()
	if err != nil {
		return 0, err
	}
	for tok := p.peek(); tok == "|" || tok == "+"; tok = p.peek() {
		p.next()
		t, err := p.term()
		if err != nil {
			return 0, err
		}
		b |= t
	}
	return b, nil
}

func (p *parser) term() (Binding, error) {
	tok := p.next()
	switch {
	case tok == "":
		return 0, fmt.Errorf("%w: unexpected end", ErrSyntax)
	case isChordCall(tok) && p.peek() == "(":
		p.next()
		first, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(","); err != nil {
			return 0, err
		}
		second, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(")"); err != nil {
			return 0, err
		}
		return Chord(first, second), nil
	case isNumber(tok):
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrSyntax, tok)
		}
		return Binding(n), nil
	default:
		return lookup(tok)
	}
}

func isChordCall(tok string) bool {
	return strings.EqualFold(stripNamespace(tok), "chord")
}

// isNumber matches raw integer codes. A lone digit is read as that digit's
// key instead.
func isNumber(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type namespace int

const (
	anyNamespace namespace = iota
	modNamespace
	keyNamespace
)

func stripNamespace(tok string) string {
	name, _ := splitNamespace(tok)
	return name
}

func splitNamespace(tok string) (string, namespace) {
	tok = strings.TrimPrefix(tok, "monaco.")
	for _, prefix := range []string{"KeyMod.", "Mod."} {
		if rest, ok := strings.CutPrefix(tok, prefix); ok {
			return rest, modNamespace
		}
	}
	for _, prefix := range []string{"KeyCode.", "Key."} {
		if rest, ok := strings.CutPrefix(tok, prefix); ok {
			return rest, keyNamespace
		}
	}
	return tok, anyNamespace
}

func lookup(tok string) (Binding, error) {
	name, ns := splitNamespace(tok)
	lower := strings.ToLower(name)

	if ns != keyNamespace {
		if b, ok := modifiers[lower]; ok {
			return b, nil
		}
	}
	if ns == anyNamespace {
		if b, ok := modifierAliases[lower]; ok {
			return b, nil
		}
	}
	if ns != modNamespace {
		if b, ok := keyCodes[lower]; ok {
			return b, nil
		}
	}
	if ns == anyNamespace && len(name) == 1 {
		c := rune(strings.ToUpper(name)[0])
		switch {
		case c >= 'A' && c <= 'Z':
			return keyCodes["key"+strings.ToLower(name)], nil
		case c >= '0' && c <= '9':
			return keyCodes["digit"+name], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownToken, tok)
}

func tokenize(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case unicode.IsSpace(r):
			flush()
		case strings.ContainsRune("|+(),", r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
