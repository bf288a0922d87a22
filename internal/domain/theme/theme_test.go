package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const themesYAML = `
- id: monokai
  base: vs-dark
  inherit: true
  colors:
    editor.background: "#272822"
  rules:
    - token: comment
      foreground: "75715e"
      fontStyle: italic
- id: paper
  base: vs
`

func TestBuiltins(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, BaseDark, r.Current().ID)
	ids := []string{}
	for _, th := range r.List() {
		ids = append(ids, th.ID)
	}
	assert.Equal(t, []string{"hc-black", "vs", "vs-dark"}, ids)
}

func TestLoadYAML(t *testing.T) {
	r := NewRegistry()

	n, err := r.LoadYAML([]byte(themesYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mono, ok := r.Get("monokai")
	require.True(t, ok)
	assert.True(t, mono.Inherit)
	assert.Equal(t, "#272822", mono.Colors["editor.background"])
	require.Len(t, mono.Rules, 1)
	assert.Equal(t, Rule{Token: "comment", Foreground: "75715e", FontStyle: "italic"}, mono.Rules[0])
}

func TestLoadYAMLErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.LoadYAML([]byte("- id: [unclosed"))
	assert.Error(t, err)

	_, err = r.LoadYAML([]byte("- id: ok\n- id: bad\n  base: sepia\n"))
	assert.Error(t, err)
	_, ok := r.Get("ok")
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Theme{ID: "night"}))

	require.NoError(t, r.Set("night"))
	assert.Equal(t, "night", r.Current().ID)
	assert.Equal(t, BaseDark, r.Current().Base)

	err := r.Set("missing")
	assert.ErrorIs(t, err, ErrUnknownTheme)
	assert.Equal(t, "night", r.Current().ID)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Theme{}))
	assert.Error(t, r.Register(Theme{ID: "x", Base: "sepia"}))
}
