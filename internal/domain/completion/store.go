package completion

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"
)

// Kind mirrors the widget's completion item kinds
type Kind string

const (
	KindValue    Kind = "Value"
	KindFunction Kind = "Function"
	KindMethod   Kind = "Method"
	KindEvent    Kind = "Event"
	KindEnum     Kind = "Enum"
)

// Item is one completion entry
type Item struct {
	Name          string `json:"name"`
	FullName      string `json:"fullname"`
	Parent        string `json:"parent,omitempty"`
	Type          Kind   `json:"type,omitempty"`
	Description   string `json:"description,omitempty"`
	ClassFunction bool   `json:"classFunction,omitempty"`
}

// Usage is the text inserted when the item is accepted
func (i Item) Usage() string {
	if i.Type == KindFunction || i.Type == KindMethod {
		if i.ClassFunction {
			return i.Name + "()"
		}
		return i.FullName + "()"
	}
	return i.FullName
}

func (i *Item) normalize() {
	if i.FullName == "" {
		i.FullName = i.Name
	}
	if i.Name == "" {
		if i.ClassFunction {
			i.Name = i.FullName[strings.LastIndex(i.FullName, ":")+1:]
		} else {
			i.Name = i.FullName
		}
	}
	if i.Type == "" {
		i.Type = KindValue
	}
}

// Snippet is a named code template
type Snippet struct {
	Name string `json:"name" toml:"name"`
	Code string `json:"code" toml:"code"`
}

// ClientData is the name dump sent by the game client
type ClientData struct {
	Values string `json:"values"`
	Funcs  string `json:"funcs"`
}

// State is the serialisable content of a Store
type State struct {
	Values   []Item    `json:"values"`
	Methods  []Item    `json:"methods"`
	Modules  []string  `json:"modules"`
	Snippets []Snippet `json:"snippets"`
}

// Store is safe for concurrent use
type Store struct {
	mu       sync.RWMutex
	values   map[string]Item
	methods  map[string][]Item
	modules  []string
	snippets []Snippet
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.values = make(map[string]Item)
	s.methods = make(map[string][]Item)
	s.modules = nil
	s.snippets = nil
}

// Reset drops everything including snippets
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// AddValue stores an item. Class functions go to the method table and are
// de-duplicated by full name; other items replace any entry with the same
// full name.
func (s *Store) AddValue(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(item)
}

func (s *Store) AddValues(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.add(item)
	}
}

func (s *Store) add(item Item) {
	item.normalize()
	if item.FullName == "" {
		return
	}

	if !item.ClassFunction {
		s.values[item.FullName] = item
		return
	}

	for i, m := range s.methods[item.Name] {
		if m.FullName == item.FullName {
			s.methods[item.Name][i] = item
			return
		}
	}
	s.methods[item.Name] = append(s.methods[item.Name], item)
}

func (s *Store) addModule(name string) {
	if name == "" {
		return
	}
	for _, m := range s.modules {
		if m == name {
			return
		}
	}
	s.modules = append(s.modules, name)
}

func (s *Store) hasMethod(name, fullName string) bool {
	for _, m := range s.methods[name] {
		if m.FullName == fullName {
			return true
		}
	}
	return false
}

// LoadClientData ingests the client's pipe-separated name lists. Dotted
// names register their table as a module; "Class:Method" entries become
// methods. Names already known are kept as they are.
func (s *Store) LoadClientData(data ClientData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, value := range splitNames(data.Values) {
		name := value
		if i := strings.LastIndex(value, "."); i >= 0 {
			name = value[i+1:]
			s.addModule(value[:i])
		}
		if _, ok := s.values[value]; !ok {
			s.add(Item{Name: name, FullName: value})
		}
	}

	for _, fn := range splitNames(data.Funcs) {
		item := Item{Name: fn, FullName: fn, Type: KindFunction}

		switch {
		case strings.Contains(fn, "."):
			i := strings.LastIndex(fn, ".")
			item.Name = fn[i+1:]
			s.addModule(fn[:i])
		case strings.Contains(fn, ":"):
			i := strings.LastIndex(fn, ":")
			item.Name = fn[i+1:]
			item.Parent = fn[:i]
			item.ClassFunction = true
			item.Type = KindMethod
		}

		if item.ClassFunction {
			if s.hasMethod(item.Name, fn) {
				continue
			}
		} else if _, ok := s.values[fn]; ok {
			continue
		}
		s.add(item)
	}
}

func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, "|") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// AddSnippet appends a snippet; duplicates are allowed
func (s *Store) AddSnippet(name, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets = append(s.snippets, Snippet{Name: name, Code: code})
}

func (s *Store) LoadSnippets(snippets []Snippet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets = append(s.snippets, snippets...)
}

type snippetFile struct {
	Snippets []Snippet `toml:"snippet"`
}

// LoadSnippetsTOML appends the [[snippet]] tables of a TOML document
func (s *Store) LoadSnippetsTOML(data []byte) (int, error) {
	var file snippetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse snippets: %w", err)
	}
	for i, sn := range file.Snippets {
		if sn.Name == "" {
			return 0, fmt.Errorf("snippet %d: name is required", i)
		}
	}
	s.LoadSnippets(file.Snippets)
	return len(file.Snippets), nil
}

// Values returns the non-method items sorted by full name
func (s *Store) Values() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(s.values))
	for _, item := range s.values {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FullName < items[j].FullName })
	return items
}

// Lookup finds a value by full name
func (s *Store) Lookup(fullName string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.values[fullName]
	return item, ok
}

// Methods returns every method with the given short name
func (s *Store) Methods(name string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.methods[name]...)
}

// Modules returns module names in registration order
func (s *Store) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.modules...)
}

func (s *Store) Snippets() []Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Snippet(nil), s.snippets...)
}

// State snapshots the store
func (s *Store) State() State {
	st := State{
		Values:   s.Values(),
		Modules:  s.Modules(),
		Snippets: s.Snippets(),
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st.Methods = append(st.Methods, s.methods[name]...)
	}
	s.mu.RUnlock()
	return st
}

// LoadState replaces the store content with a JSON encoded State
func (s *Store) LoadState(data []byte) error {
	var st State
	if err := sonic.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to parse completion state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	for _, item := range st.Values {
		s.add(item)
	}
	for _, item := range st.Methods {
		item.ClassFunction = true
		s.add(item)
	}
	for _, m := range st.Modules {
		s.addModule(m)
	}
	s.snippets = append(s.snippets, st.Snippets...)
	return nil
}

// Extend merges feed items and registers their parents as modules
func (s *Store) Extend(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.addModule(item.Parent)
		s.add(item)
	}
}
