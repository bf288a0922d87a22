package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientData(t *testing.T) {
	s := NewStore()

	s.LoadClientData(ClientData{
		Values: "CLIENT|math.pi|render.GetDXLevel|",
		Funcs:  "print|surface.SetDrawColor|Entity:GetPos|Vector:Length|Entity:GetPos",
	})

	client, ok := s.Lookup("CLIENT")
	require.True(t, ok)
	assert.Equal(t, KindValue, client.Type)

	pi, ok := s.Lookup("math.pi")
	require.True(t, ok)
	assert.Equal(t, "pi", pi.Name)

	draw, ok := s.Lookup("surface.SetDrawColor")
	require.True(t, ok)
	assert.Equal(t, "SetDrawColor", draw.Name)
	assert.Equal(t, "surface.SetDrawColor()", draw.Usage())

	getPos := s.Methods("GetPos")
	require.Len(t, getPos, 1)
	assert.Equal(t, "Entity", getPos[0].Parent)
	assert.Equal(t, "GetPos()", getPos[0].Usage())
	_, ok = s.Lookup("Entity:GetPos")
	assert.False(t, ok)

	assert.Equal(t, []string{"math", "render", "surface"}, s.Modules())
}

func TestLoadClientDataKeepsKnownNames(t *testing.T) {
	s := NewStore()
	s.AddValue(Item{FullName: "print", Type: KindFunction, Description: "Writes to console"})

	s.LoadClientData(ClientData{Funcs: "print"})

	item, _ := s.Lookup("print")
	assert.Equal(t, "Writes to console", item.Description)
}

func TestAddValue(t *testing.T) {
	s := NewStore()

	s.AddValues([]Item{
		{FullName: "Player:Nick", ClassFunction: true, Type: KindMethod},
		{FullName: "Weapon:Nick", ClassFunction: true, Type: KindMethod},
		{FullName: "Player:Nick", ClassFunction: true, Type: KindMethod, Description: "updated"},
		{Name: "HUD_PRINTTALK", Type: KindEnum},
		{},
	})

	nick := s.Methods("Nick")
	require.Len(t, nick, 2)
	assert.Equal(t, "updated", nick[0].Description)
	assert.Equal(t, "Nick", nick[1].Name)

	values := s.Values()
	require.Len(t, values, 1)
	assert.Equal(t, "HUD_PRINTTALK", values[0].FullName)
	assert.Equal(t, "HUD_PRINTTALK", values[0].Usage())
}

func TestSnippets(t *testing.T) {
	s := NewStore()
	s.AddSnippet("for", "for i = 1, 10 do\nend")
	s.LoadSnippets([]Snippet{{Name: "if", Code: "if x then\nend"}})

	n, err := s.LoadSnippetsTOML([]byte(`
[[snippet]]
name = "hook"
code = """
hook.Add("Think", "id", function()
end)"""

[[snippet]]
name = "for"
code = "for k, v in pairs(t) do end"
`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snippets := s.Snippets()
	require.Len(t, snippets, 4)
	assert.Equal(t, "hook", snippets[2].Name)
	assert.Contains(t, snippets[2].Code, `hook.Add("Think"`)
	assert.Equal(t, "for", snippets[3].Name)
}

func TestLoadSnippetsTOMLErrors(t *testing.T) {
	s := NewStore()

	_, err := s.LoadSnippetsTOML([]byte("[[snippet]\nname="))
	assert.Error(t, err)

	_, err = s.LoadSnippetsTOML([]byte("[[snippet]]\ncode = \"x\"\n"))
	assert.Error(t, err)
	assert.Empty(t, s.Snippets())
}

func TestStateRoundTrip(t *testing.T) {
	s := NewStore()
	s.LoadClientData(ClientData{Values: "math.pi", Funcs: "Entity:GetPos"})
	s.AddSnippet("x", "y")

	data, err := json.Marshal(s.State())
	require.NoError(t, err)

	restored := NewStore()
	restored.AddValue(Item{FullName: "stale"})
	require.NoError(t, restored.LoadState(data))

	assert.Equal(t, s.State(), restored.State())
	_, ok := restored.Lookup("stale")
	assert.False(t, ok)

	assert.Error(t, restored.LoadState([]byte("{")))
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.LoadClientData(ClientData{Values: "a.b", Funcs: "C:d"})
	s.AddSnippet("x", "y")

	s.Reset()

	assert.Empty(t, s.Values())
	assert.Empty(t, s.Methods("d"))
	assert.Empty(t, s.Modules())
	assert.Empty(t, s.Snippets())
}
