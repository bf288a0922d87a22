// Package action keeps the editor's named commands and their keybindings.
package action

import (
	"fmt"
	"sort"
	"sync"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/keybind"
)

// Execution realms understood by the host
const (
	RealmClient = "client"
	RealmMenu   = "menu"
)

// Built-in action IDs
const (
	ExecuteClientID = "editor.command.execute_client"
	ExecuteMenuID   = "editor.command.execute_menu"
)

// Action is a command the user can run from a keybinding or context menu
type Action struct {
	ID               string            `json:"id"`
	Label            string            `json:"label"`
	KeyBindings      []string          `json:"keyBindings,omitempty"`
	ContextMenuGroup string            `json:"contextMenuGroup,omitempty"`
	Bindings         []keybind.Binding `json:"bindings,omitempty"`
	Run              func()            `json:"-"`
}

// Registry holds actions by ID
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*Action
}

// NewRegistry creates an empty action registry
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*Action)}
}

// Add parses the action's keybindings and stores it, replacing any action
// with the same ID. An invalid binding rejects the whole action.
func (r *Registry) Add(a Action) error {
	if a.ID == "" {
		return fmt.Errorf("action id is required")
	}

	bindings := make([]keybind.Binding, 0, len(a.KeyBindings))
	for _, expr := range a.KeyBindings {
		b, err := keybind.Parse(expr)
		if err != nil {
			return fmt.Errorf("failed to parse keybinding for %s: %w", a.ID, err)
		}
		bindings = append(bindings, b)
	}
	a.Bindings = append(bindings, a.Bindings...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.ID] = &a
	return nil
}

// Remove deletes an action
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[id]; !ok {
		return false
	}
	delete(r.actions, id)
	return true
}

// Get returns a copy of an action
func (r *Registry) Get(id string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[id]
	if !ok {
		return Action{}, false
	}
	return *a, true
}

// List returns every action sorted by ID
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		list = append(list, *a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Lookup finds the action bound to b
func (r *Registry) Lookup(b keybind.Binding) (Action, bool) {
	for _, a := range r.List() {
		for _, bound := range a.Bindings {
			if bound == b {
				return a, true
			}
		}
	}
	return Action{}, false
}

// Trigger runs an action. Run is called outside the registry lock.
func (r *Registry) Trigger(id string) bool {
	r.mu.RLock()
	a, ok := r.actions[id]
	var run func()
	if ok {
		run = a.Run
	}
	r.mu.RUnlock()

	if !ok {
		return false
	}
	if run != nil {
		run()
	}
	return true
}

// Builtins returns the execution actions. exec receives the target realm.
func Builtins(exec func(realm string)) []Action {
	return []Action{
		{
			ID:          ExecuteClientID,
			Label:       "Execute: Client",
			KeyBindings: []string{"Mod.chord(Mod.CtrlCmd | Key.KeyK, Mod.CtrlCmd | Key.KeyC)"},
			Run:         func() { exec(RealmClient) },
		},
		{
			ID:          ExecuteMenuID,
			Label:       "Execute: Menu",
			KeyBindings: []string{"Mod.chord(Mod.CtrlCmd | Key.KeyK, Mod.CtrlCmd | Key.KeyM)"},
			Run:         func() { exec(RealmMenu) },
		},
	}
}
