package action

import (
	"testing"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/keybind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndTrigger(t *testing.T) {
	reg := NewRegistry()
	ran := 0

	err := reg.Add(Action{
		ID:          "save",
		Label:       "Save",
		KeyBindings: []string{"Mod.CtrlCmd | Key.KeyS"},
		Run:         func() { ran++ },
	})
	require.NoError(t, err)

	a, ok := reg.Get("save")
	require.True(t, ok)
	assert.Equal(t, []keybind.Binding{keybind.CtrlCmd | 49}, a.Bindings)

	assert.True(t, reg.Trigger("save"))
	assert.Equal(t, 1, ran)
	assert.False(t, reg.Trigger("missing"))
}

func TestAddRejectsInvalidBinding(t *testing.T) {
	reg := NewRegistry()

	err := reg.Add(Action{ID: "bad", KeyBindings: []string{"Mod.CtrlCmd | Key.Nope"}})

	assert.ErrorIs(t, err, keybind.ErrUnknownToken)
	_, ok := reg.Get("bad")
	assert.False(t, ok)
	assert.Error(t, reg.Add(Action{}))
}

func TestListAndLookup(t *testing.T) {
	reg := NewRegistry()
	for _, a := range Builtins(func(string) {}) {
		require.NoError(t, reg.Add(a))
	}
	require.NoError(t, reg.Add(Action{ID: "a.first"}))

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a.first", list[0].ID)
	assert.Equal(t, ExecuteClientID, list[1].ID)

	found, ok := reg.Lookup(keybind.MustParse("chord(Ctrl+K, Ctrl+M)"))
	require.True(t, ok)
	assert.Equal(t, ExecuteMenuID, found.ID)

	assert.True(t, reg.Remove("a.first"))
	assert.False(t, reg.Remove("a.first"))
}

func TestBuiltinsExecuteRealm(t *testing.T) {
	reg := NewRegistry()
	var realms []string
	for _, a := range Builtins(func(realm string) { realms = append(realms, realm) }) {
		require.NoError(t, reg.Add(a))
	}

	reg.Trigger(ExecuteClientID)
	reg.Trigger(ExecuteMenuID)

	assert.Equal(t, []string{RealmClient, RealmMenu}, realms)
}
