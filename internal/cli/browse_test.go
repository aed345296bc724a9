package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/search"
)

func quartetResult(t *testing.T) *search.Result {
	t.Helper()
	in, err := pio.ReadAdjacency(strings.NewReader(quartet))
	if err != nil {
		t.Fatal(err)
	}
	m, err := in.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	res, err := search.New(m, search.Options{Workers: 1}).Run(context.Background(), in.Tree)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestBrowseModelNavigation(t *testing.T) {
	res := quartetResult(t)
	var m tea.Model = NewBrowseModel(res)

	m = press(m, "h")
	if got := m.(BrowseModel).Cursor; got != 0 {
		t.Errorf("Cursor after h at start = %d, want 0", got)
	}
	m = press(m, "l", "l", "l", "l", "l", "l", "l", "l")
	if got, want := m.(BrowseModel).Cursor, len(res.Topologies)-1; got != want {
		t.Errorf("Cursor after paging right = %d, want %d", got, want)
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	bm := m.(BrowseModel)
	if bm.Height != 5 || bm.Width != 100 {
		t.Errorf("size = %dx%d, want 100 wide, 5 rows", bm.Width, bm.Height)
	}
	m = press(m, "j", "j", "j")
	if got, limit := m.(BrowseModel).Offset, bm.edgeCount()-bm.Height; got != limit {
		t.Errorf("Offset after scrolling = %d, want %d", got, limit)
	}
	m = press(m, "k", "k", "k", "k")
	if got := m.(BrowseModel).Offset; got != 0 {
		t.Errorf("Offset after scrolling back = %d, want 0", got)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestBrowseModelView(t *testing.T) {
	res := quartetResult(t)
	m := NewBrowseModel(res)

	view := m.View()
	for _, want := range []string{"Tree 1/", "score", "ACG", "edges 1-5 of 5"} {
		if !strings.Contains(view, want) {
			t.Errorf("edge view missing %q:\n%s", want, view)
		}
	}

	nw := press(m, "tab").(BrowseModel).View()
	if !strings.Contains(nw, pio.Newick(res.Topologies[0], true)[:10]) {
		t.Errorf("newick view does not show the tree:\n%s", nw)
	}
}
