// Package aggregate folds the text of selected layers into one accumulated
// string across repeated selection changes.
//
// An Accumulator is not safe for concurrent use. The session event loop is its
// only caller.
package aggregate

import (
	"strings"

	"textassist/engine/internal/document"
)

// NoSelection is the accumulated text while no text layer is selected.
const NoSelection = "No text selected"

const separator = "\n\n"

// Snapshot is what the UI is told after each update.
type Snapshot struct {
	Text  string
	Count int
}

// Accumulator holds the accumulated text and the identities of nodes whose
// text has already been folded into it.
//
// A node is read at most once per continuous selection: if its payload
// changes while it stays selected, the new payload is not picked up until the
// node is deselected and selected again.
type Accumulator struct {
	text      string
	processed map[string]struct{}
}

func New() *Accumulator {
	return &Accumulator{
		text:      NoSelection,
		processed: make(map[string]struct{}),
	}
}

// Reset returns to the start of a new accumulation epoch.
func (a *Accumulator) Reset() {
	a.text = NoSelection
	clear(a.processed)
}

func (a *Accumulator) Text() string {
	return a.text
}

// Processed reports whether the node's text is already part of Text.
func (a *Accumulator) Processed(id string) bool {
	_, ok := a.processed[id]
	return ok
}

func (a *Accumulator) ProcessedCount() int {
	return len(a.processed)
}

// Update folds the current selection into the accumulated text.
func (a *Accumulator) Update(selection []document.Node) Snapshot {
	textNodes := document.TextNodes(selection)
	if len(textNodes) == 0 {
		a.Reset()
		return Snapshot{Text: a.text, Count: 0}
	}
	a.evictDeselected(textNodes)
	a.append(textNodes)
	return Snapshot{Text: a.text, Count: len(textNodes)}
}

func (a *Accumulator) evictDeselected(textNodes []document.Node) {
	selected := make(map[string]struct{}, len(textNodes))
	for _, node := range textNodes {
		selected[node.ID] = struct{}{}
	}
	for id := range a.processed {
		if _, ok := selected[id]; !ok {
			delete(a.processed, id)
		}
	}
}

func (a *Accumulator) append(textNodes []document.Node) {
	var parts []string
	for _, node := range textNodes {
		if _, seen := a.processed[node.ID]; seen {
			continue
		}
		a.processed[node.ID] = struct{}{}
		if text := node.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return
	}
	increment := strings.Join(parts, separator)
	if a.text == "" || a.text == NoSelection {
		a.text = increment
		return
	}
	a.text = a.text + separator + increment
}
