package vfs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGetRemove(t *testing.T) {
	fs := New()

	fs.Add("lua/init.lua", "print(1)")
	fs.Add("lua/init.lua", "print(2)")

	content, ok := fs.Get("lua/init.lua")
	require.True(t, ok)
	assert.Equal(t, "print(2)", content)
	assert.Equal(t, 1, fs.Size())
	assert.True(t, fs.Has("lua/init.lua"))

	assert.True(t, fs.Remove("lua/init.lua"))
	assert.False(t, fs.Remove("lua/init.lua"))
	assert.False(t, fs.Has("lua/init.lua"))

	_, ok = fs.Get("missing")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	fs := New()
	fs.Add("a", "1")
	fs.Add("b", "2")

	fs.Clear()

	assert.Equal(t, 0, fs.Size())
	assert.Empty(t, fs.Paths())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lua/init.lua", "lua/init.lua"},
		{"\\lua\\\\init.lua", "lua/init.lua"},
		{"//a//b/", "a/b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTreeOrdering(t *testing.T) {
	fs := New()
	fs.Add("zeta.lua", "z")
	fs.Add("alpha.lua", "a")
	fs.Add("lua/autorun/init.lua", "init")
	fs.Add("addons\\mine\\info.txt", "info")

	tree := fs.Tree()
	children := tree.Sorted()
	require.Len(t, children, 4)

	assert.Equal(t, "addons", children[0].Name)
	assert.False(t, children[0].IsFile)
	assert.Equal(t, "lua", children[1].Name)
	assert.Equal(t, "alpha.lua", children[2].Name)
	assert.True(t, children[2].IsFile)
	assert.Equal(t, "zeta.lua", children[3].Name)

	node, ok := tree.Lookup("addons/mine/info.txt")
	require.True(t, ok)
	assert.Equal(t, "info", node.Content)
	assert.Equal(t, 4, tree.Files())
}

func TestTreeReflectsLatestWrites(t *testing.T) {
	fs := New()
	fs.Add("a.lua", "1")
	assert.Equal(t, 1, fs.Tree().Files())

	fs.Add("b.lua", "2")
	fs.Remove("a.lua")

	tree := fs.Tree()
	assert.Equal(t, 1, tree.Files())
	_, ok := tree.Lookup("a.lua")
	assert.False(t, ok)
}

func TestTreeFolderWinsOverFile(t *testing.T) {
	fs := New()
	fs.Add("a", "file")
	fs.Add("a/b", "nested")

	node, ok := fs.Tree().Lookup("a")
	require.True(t, ok)
	assert.False(t, node.IsFile)

	leaf, ok := fs.Tree().Lookup("a/b")
	require.True(t, ok)
	assert.Equal(t, "nested", leaf.Content)
}

func TestTreeWalkOrder(t *testing.T) {
	fs := New()
	fs.Add("b.lua", "")
	fs.Add("dir/x.lua", "")
	fs.Add("a.lua", "")

	var visited []string
	fs.Tree().Walk(func(path string, _ *Node) bool {
		visited = append(visited, path)
		return true
	})

	assert.Equal(t, []string{"dir", "dir/x.lua", "a.lua", "b.lua"}, visited)
}

func TestTreeMarshalJSON(t *testing.T) {
	fs := New()
	fs.Add("lua/init.lua", "print(1)")
	fs.Add("readme.txt", "hi")

	data, err := json.Marshal(fs.Tree())
	require.NoError(t, err)
	assert.JSONEq(t, `{"lua":{"init.lua":"print(1)"},"readme.txt":"hi"}`, string(data))
}

func TestGlob(t *testing.T) {
	fs := New()
	fs.Add("lua/autorun/init.lua", "")
	fs.Add("lua/autorun/client/cl.lua", "")
	fs.Add("readme.txt", "")

	assert.Equal(t, []string{"lua/autorun/client/cl.lua", "lua/autorun/init.lua"}, fs.Glob("**/*.lua"))
	assert.Equal(t, []string{"lua/autorun/init.lua"}, fs.Glob("lua/*/*.lua"))
	assert.Empty(t, fs.Glob("*.lua"))
	assert.Nil(t, fs.Glob("[unclosed"))
}

func TestConcurrentAccess(t *testing.T) {
	fs := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := filepath.ToSlash(filepath.Join("dir", string(rune('a'+i))+".lua"))
			fs.Add(path, "x")
			_ = fs.Tree()
			_ = fs.Glob("**/*.lua")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, fs.Size())
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	write := func(rel string, data []byte) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, data, 0o644))
	}

	write("init.lua", []byte("print('root')\n"))
	write("lua/autorun/client.lua", []byte("local x = 1\n"))
	write("notes.txt", []byte("not lua\n"))
	write("icon.lua", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d})
	write(".git/config.lua", []byte("hidden\n"))

	fs := New()
	n, err := LoadDir(context.Background(), fs, root, LoadOptions{
		Patterns: []string{"**/*.lua"},
		Prefix:   "addon",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	content, ok := fs.Get("addon/init.lua")
	require.True(t, ok)
	assert.Equal(t, "print('root')\n", content)
	assert.True(t, fs.Has("addon/lua/autorun/client.lua"))
	assert.False(t, fs.Has("addon/notes.txt"))
	assert.False(t, fs.Has("addon/icon.lua"))
	assert.False(t, fs.Has("addon/.git/config.lua"))
}

func TestLoadDirSizeCap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.lua"), []byte("0123456789"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.lua"), []byte("01"), 0o644))

	fs := New()
	n, err := LoadDir(context.Background(), fs, root, LoadOptions{MaxFileSize: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.True(t, fs.Has("small.lua"))
}

func TestLoadDirErrors(t *testing.T) {
	fs := New()

	_, err := LoadDir(context.Background(), fs, filepath.Join(t.TempDir(), "missing"), LoadOptions{})
	assert.Error(t, err)

	_, err = LoadDir(context.Background(), fs, t.TempDir(), LoadOptions{Patterns: []string{"[bad"}})
	assert.Error(t, err)
}
