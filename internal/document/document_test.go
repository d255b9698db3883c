package document

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextNodesKeepsHostOrder(t *testing.T) {
	selection := []Node{
		{ID: "3", Type: TypeText, Characters: "c"},
		{ID: "frame", Type: "FRAME"},
		{ID: "1", Type: TypeText, Characters: "a"},
	}
	got := TextNodes(selection)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
	assert.Empty(t, Node{ID: "frame", Type: "FRAME", Characters: "ignored"}.Text())
}

func TestMemorySetNotifiesWatcher(t *testing.T) {
	mem := NewMemory(Node{ID: "1", Type: TypeText, Characters: "Hello"})
	ctx, cancel := context.WithCancel(context.Background())
	var changes atomic.Int32
	done := make(chan error, 1)
	go func() { done <- mem.Watch(ctx, func([]Node) { changes.Add(1) }) }()

	require.Eventually(t, func() bool {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		return mem.onChange != nil
	}, time.Second, 5*time.Millisecond)

	mem.Set([]Node{{ID: "2", Type: TypeText, Characters: "World"}})
	assert.Equal(t, int32(1), changes.Load())
	assert.Equal(t, []Node{{ID: "2", Type: TypeText, Characters: "World"}}, mem.Selection())

	cancel()
	require.NoError(t, <-done)
	mem.Set(nil)
	assert.Equal(t, int32(1), changes.Load())
}

func TestMemoryDeliversEachSnapshotInOrder(t *testing.T) {
	mem := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var got [][]Node
	done := make(chan error, 1)
	go func() {
		done <- mem.Watch(ctx, func(selection []Node) {
			mu.Lock()
			got = append(got, selection)
			mu.Unlock()
		})
	}()

	a := Node{ID: "a", Type: TypeText, Characters: "Alpha"}
	b := Node{ID: "b", Type: TypeText, Characters: "Beta"}
	mem.Set([]Node{a, b})
	mem.Set([]Node{b})
	mem.Set([]Node{a, b})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, [][]Node{{a, b}, {b}, {a, b}}, got)
}

func TestMemorySelectionIsCopy(t *testing.T) {
	mem := NewMemory(Node{ID: "1", Type: TypeText, Characters: "Hello"})
	sel := mem.Selection()
	sel[0].Characters = "mutated"
	assert.Equal(t, "Hello", mem.Selection()[0].Characters)
}

func TestFileReloadParsesYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.yaml")
	src := NewFile(path, nil)

	require.NoError(t, src.Reload())
	assert.Empty(t, src.Selection())

	yamlDoc := "selection:\n  - id: \"1:2\"\n    type: TEXT\n    characters: Hello\n  - id: \"1:3\"\n    type: RECTANGLE\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	require.NoError(t, src.Reload())
	assert.Equal(t, []Node{
		{ID: "1:2", Type: TypeText, Characters: "Hello"},
		{ID: "1:3", Type: "RECTANGLE"},
	}, src.Selection())

	jsonDoc := `{"selection":[{"id":"9","type":"TEXT","characters":"World"}]}`
	require.NoError(t, os.WriteFile(path, []byte(jsonDoc), 0o600))
	require.NoError(t, src.Reload())
	assert.Equal(t, []Node{{ID: "9", Type: TypeText, Characters: "World"}}, src.Selection())

	require.NoError(t, os.WriteFile(path, []byte("selection: [unterminated"), 0o600))
	require.Error(t, src.Reload())
	assert.Len(t, src.Selection(), 1, "failed reload keeps previous selection")
}

func TestFileWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.yaml")
	src := NewFile(path, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func([]Node) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		doc := "selection:\n  - {id: a, type: TEXT, characters: hi}\n"
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			return false
		}
		select {
		case <-changed:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []Node{{ID: "a", Type: TypeText, Characters: "hi"}}, src.Selection())

	cancel()
	require.NoError(t, <-done)
}

func TestMemoryDeliversSetsBeforeWatch(t *testing.T) {
	mem := NewMemory()
	early := Node{ID: "1", Type: TypeText, Characters: "early"}
	mem.Set([]Node{early})
	mem.Set(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var got [][]Node
	require.NoError(t, mem.Watch(ctx, func(selection []Node) { got = append(got, selection) }))
	assert.Equal(t, [][]Node{{early}, nil}, got)
}
