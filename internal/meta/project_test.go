package meta

import (
	"bytes"
	"testing"

	"golang.org/x/net/html"
)

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	return buf.String()
}

// TestProject tests projection of metadata into head elements.
func TestProject(t *testing.T) {
	t.Parallel()

	t.Run("nil metadata yields only charset", func(t *testing.T) {
		t.Parallel()

		nodes := Project(nil)
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node, got %d", len(nodes))
		}
		if got := render(t, nodes[0]); got != `<meta charset="UTF-8"/>` {
			t.Errorf("unexpected charset element: %s", got)
		}
	})

	t.Run("empty metadata yields only charset", func(t *testing.T) {
		t.Parallel()

		if nodes := Project(New()); len(nodes) != 1 {
			t.Errorf("expected 1 node, got %d", len(nodes))
		}
	})

	t.Run("one element per entry plus charset", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			entries [][2]string
		}{
			{name: "single", entries: [][2]string{{"author", "Someone"}}},
			{name: "several", entries: [][2]string{{"author", "A"}, {"language", "en"}, {"source", "http://x"}}},
			{name: "with title", entries: [][2]string{{"title", "T"}, {"author", "A"}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				m := New()
				for _, e := range tt.entries {
					m.Set(e[0], e[1])
				}
				nodes := Project(m)
				if len(nodes) != len(tt.entries)+1 {
					t.Errorf("expected %d nodes, got %d", len(tt.entries)+1, len(nodes))
				}
			})
		}
	})

	t.Run("title renders as title element in order", func(t *testing.T) {
		t.Parallel()

		m := New()
		m.Set("author", "Someone & Co")
		m.Set("title", "A <Story>")
		m.Set("language", "en")

		nodes := Project(m)
		want := []string{
			`<meta charset="UTF-8"/>`,
			`<meta name="author" content="Someone &amp; Co"/>`,
			`<title>A &lt;Story&gt;</title>`,
			`<meta name="language" content="en"/>`,
		}
		if len(nodes) != len(want) {
			t.Fatalf("expected %d nodes, got %d", len(want), len(nodes))
		}
		for i, n := range nodes {
			if got := render(t, n); got != want[i] {
				t.Errorf("node %d: expected %s, got %s", i, want[i], got)
			}
		}
	})
}
