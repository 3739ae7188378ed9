package tree

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// pinClock fixes the package clock for the duration of the test.
func pinClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func mustNode(t *testing.T, title string) *Node {
	t.Helper()
	n, err := NewNode(title)
	if err != nil {
		t.Fatalf("NewNode(%q) error = %v", title, err)
	}
	return n
}

func mustAdd(t *testing.T, parent *Node, title string) *Node {
	t.Helper()
	n, err := AddChild(parent, title)
	if err != nil {
		t.Fatalf("AddChild(%q) error = %v", title, err)
	}
	return n
}

func TestNewNode_TrimsTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Buy milk", want: "Buy milk"},
		{name: "surrounding spaces", input: "   Buy milk  ", want: "Buy milk"},
		{name: "tabs and newlines", input: "\tFix bug\n", want: "Fix bug"},
		{name: "single char", input: "x", want: "x"},
		{name: "exactly max", input: strings.Repeat("a", MaxTitleLength), want: strings.Repeat("a", MaxTitleLength)},
		{name: "max after trim", input: "  " + strings.Repeat("b", MaxTitleLength) + "  ", want: strings.Repeat("b", MaxTitleLength)},
		{name: "multibyte counted as characters", input: strings.Repeat("é", MaxTitleLength), want: strings.Repeat("é", MaxTitleLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNode(tt.input)
			if err != nil {
				t.Fatalf("NewNode() error = %v", err)
			}
			if n.Title != tt.want {
				t.Errorf("Title = %q, want %q", n.Title, tt.want)
			}
		})
	}
}

func TestNewNode_Defaults(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pinClock(t, ts)

	n := mustNode(t, "Root")

	if n.ID == "" {
		t.Error("ID should be generated")
	}
	if n.Status != StatusOpen {
		t.Errorf("Status = %q, want %q", n.Status, StatusOpen)
	}
	if n.Children == nil || len(n.Children) != 0 {
		t.Errorf("Children = %v, want empty non-nil slice", n.Children)
	}
	if !n.CreatedAt.Equal(ts) {
		t.Errorf("CreatedAt = %v, want %v", n.CreatedAt, ts)
	}
	if n.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", n.CompletedAt)
	}
}

func TestNewNode_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := mustNode(t, "task")
		if seen[n.ID] {
			t.Fatalf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestValidateTitle_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   \t\n "},
		{name: "too long", input: strings.Repeat("a", MaxTitleLength+1)},
		{name: "too long after trim", input: " " + strings.Repeat("a", MaxTitleLength+1) + " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTitle(tt.input)
			if err == nil {
				t.Fatal("ValidateTitle() should fail")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v should match ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T should be *ValidationError", err)
			}
			if ve.Reason == "" {
				t.Error("Reason should be set")
			}
		})
	}
}

func TestEditTitle(t *testing.T) {
	t.Run("valid title replaces trimmed", func(t *testing.T) {
		n := mustNode(t, "Old")
		id, created := n.ID, n.CreatedAt

		if err := EditTitle(n, "  New  "); err != nil {
			t.Fatalf("EditTitle() error = %v", err)
		}
		if n.Title != "New" {
			t.Errorf("Title = %q, want %q", n.Title, "New")
		}
		if n.ID != id || !n.CreatedAt.Equal(created) || n.Status != StatusOpen {
			t.Error("EditTitle should only change the title")
		}
	})

	t.Run("invalid title leaves node unchanged", func(t *testing.T) {
		n := mustNode(t, "Keep me")
		for _, bad := range []string{"", "  ", strings.Repeat("z", 201)} {
			if err := EditTitle(n, bad); err == nil {
				t.Errorf("EditTitle(%q) should fail", bad)
			}
			if n.Title != "Keep me" {
				t.Errorf("Title = %q after failed edit, want %q", n.Title, "Keep me")
			}
		}
	})
}

func TestAddChild_PreservesOrder(t *testing.T) {
	root := mustNode(t, "root")
	a := mustAdd(t, root, "A")
	b := mustAdd(t, root, "B")
	c := mustAdd(t, root, "C")

	if len(root.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(root.Children))
	}
	for i, want := range []*Node{a, b, c} {
		if root.Children[i] != want {
			t.Errorf("child[%d] = %q, want %q", i, root.Children[i].Title, want.Title)
		}
	}
}

func TestAddChild_InvalidTitle(t *testing.T) {
	root := mustNode(t, "root")
	if _, err := AddChild(root, "   "); err == nil {
		t.Fatal("AddChild with blank title should fail")
	}
	if len(root.Children) != 0 {
		t.Errorf("children = %d, want 0", len(root.Children))
	}
}

func TestMarkDone_CascadesToChain(t *testing.T) {
	// Given: root → A → B → C, with B already done earlier
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pinClock(t, earlier)
	root := mustNode(t, "root")
	a := mustAdd(t, root, "A")
	b := mustAdd(t, a, "B")
	c := mustAdd(t, b, "C")
	MarkDone(b)

	// When: root is marked done later
	later := earlier.Add(time.Hour)
	pinClock(t, later)
	MarkDone(root)

	// Then: all four are done with the later timestamp
	for _, n := range []*Node{root, a, b, c} {
		if n.Status != StatusDone {
			t.Errorf("%s status = %q, want done", n.Title, n.Status)
		}
		if n.CompletedAt == nil || !n.CompletedAt.Equal(later) {
			t.Errorf("%s CompletedAt = %v, want %v", n.Title, n.CompletedAt, later)
		}
	}
}

func TestMarkOpen_DoesNotCascade(t *testing.T) {
	parent := mustNode(t, "parent")
	child := mustAdd(t, parent, "child")
	MarkDone(parent)

	MarkOpen(parent)

	if parent.Status != StatusOpen {
		t.Errorf("parent status = %q, want open", parent.Status)
	}
	if parent.CompletedAt != nil {
		t.Error("parent CompletedAt should be cleared")
	}
	if child.Status != StatusDone {
		t.Errorf("child status = %q, want done", child.Status)
	}
	if child.CompletedAt == nil {
		t.Error("child CompletedAt should be kept")
	}
}

func TestToggleStatus_RoundTripOnLeaf(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pinClock(t, t1)
	n := mustNode(t, "leaf")

	if got := ToggleStatus(n); got != StatusDone {
		t.Fatalf("first toggle = %q, want done", got)
	}
	if n.CompletedAt == nil || !n.CompletedAt.Equal(t1) {
		t.Errorf("CompletedAt = %v, want %v", n.CompletedAt, t1)
	}
	if got := ToggleStatus(n); got != StatusOpen {
		t.Fatalf("second toggle = %q, want open", got)
	}
	if n.CompletedAt != nil {
		t.Error("CompletedAt should be cleared after reopening")
	}

	// completed_at is refreshed on each done transition, not preserved.
	t2 := t1.Add(time.Minute)
	pinClock(t, t2)
	ToggleStatus(n)
	if n.CompletedAt == nil || !n.CompletedAt.Equal(t2) {
		t.Errorf("CompletedAt = %v, want refreshed %v", n.CompletedAt, t2)
	}
}

func TestDeleteChild(t *testing.T) {
	root := mustNode(t, "root")
	a := mustAdd(t, root, "A")
	b := mustAdd(t, root, "B")
	mustAdd(t, b, "B1")
	c := mustAdd(t, root, "C")

	if !DeleteChild(root, b.ID) {
		t.Fatal("DeleteChild(existing) = false, want true")
	}
	if len(root.Children) != 2 || root.Children[0] != a || root.Children[1] != c {
		t.Errorf("children after delete = %v, want [A C]", titles(root.Children))
	}
	if Find(root, b.ID) != nil {
		t.Error("deleted node still reachable")
	}
	if CountDescendants(root) != 2 {
		t.Errorf("descendants = %d, want 2 (subtree removed)", CountDescendants(root))
	}

	// Second delete is a no-op.
	if DeleteChild(root, b.ID) {
		t.Error("DeleteChild(again) = true, want false")
	}
	if len(root.Children) != 2 {
		t.Errorf("children = %d, want 2", len(root.Children))
	}
}

func TestDeleteChild_OnlyDirectChildren(t *testing.T) {
	root := mustNode(t, "root")
	a := mustAdd(t, root, "A")
	grandchild := mustAdd(t, a, "A1")

	if DeleteChild(root, grandchild.ID) {
		t.Error("DeleteChild should not remove grandchildren")
	}
	if len(a.Children) != 1 {
		t.Errorf("A children = %d, want 1", len(a.Children))
	}
}

func TestNode_MarshalJSON(t *testing.T) {
	n := &Node{ID: "x", Title: "t", Status: StatusOpen}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"children":[]`) {
		t.Errorf("json = %s, want children as empty array", s)
	}
	if !strings.Contains(s, `"completed_at":null`) {
		t.Errorf("json = %s, want completed_at null", s)
	}
}

func TestScenario_BuildAndToggle(t *testing.T) {
	// Given: a fresh project root
	root := mustNode(t, "demo")
	if len(root.Children) != 0 {
		t.Fatalf("new root children = %d, want 0", len(root.Children))
	}

	// When: a child is added and toggled
	milk := mustAdd(t, root, "Buy milk")
	if len(root.Children) != 1 || milk.Status != StatusOpen {
		t.Fatalf("after add: children = %d, status = %q", len(root.Children), milk.Status)
	}
	ToggleStatus(milk)
	if milk.Status != StatusDone || milk.CompletedAt == nil {
		t.Fatalf("after toggle: status = %q, completed_at = %v", milk.Status, milk.CompletedAt)
	}

	// Then: a second child brings the count to two
	mustAdd(t, root, "Buy eggs")
	if len(root.Children) != 2 {
		t.Errorf("children = %d, want 2", len(root.Children))
	}
	if got := CountDescendants(root); got != 2 {
		t.Errorf("CountDescendants(root) = %d, want 2", got)
	}
}

func TestScenario_ReopenParentKeepsChildDone(t *testing.T) {
	root := mustNode(t, "root")
	a := mustAdd(t, root, "A")
	g := mustAdd(t, a, "G")

	MarkDone(a)
	if a.Status != StatusDone || g.Status != StatusDone {
		t.Fatalf("after MarkDone: A = %q, G = %q", a.Status, g.Status)
	}

	MarkOpen(a)
	if a.Status != StatusOpen {
		t.Errorf("A = %q, want open", a.Status)
	}
	if g.Status != StatusDone {
		t.Errorf("G = %q, want done", g.Status)
	}
	if m := CompletionMarker(a); m != MarkerOpen {
		t.Errorf("marker(A) = %v, want %v", m, MarkerOpen)
	}
}

func titles(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}
