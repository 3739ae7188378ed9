package session

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/alwalxed/dft/internal/tree"
)

// breadcrumbSep joins breadcrumb titles.
const breadcrumbSep = " › "

// defaultWidth is used for layout before the first WindowSizeMsg.
const defaultWidth = 80

// chromeLines counts the lines around the list: breadcrumb, two spacers,
// feedback and the help bar.
const chromeLines = 5

// ellipsis marks a line cut at the terminal width.
const ellipsis = "…"

// contentHeight returns the number of lines available for the list or the
// open dialog. Zero means the terminal size is not known yet.
func (m Model) contentHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - chromeLines
	if h < 1 {
		return 1
	}
	return h
}

// fit cuts s to the terminal width. Before the first WindowSizeMsg it is
// returned unchanged.
func (m Model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width), ellipsis)
}

// visibleRange returns the half-open range of rows to draw so that selected
// stays on screen. A height of zero draws everything.
func visibleRange(total, selected, height int) (start, end int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start = selected - height/2
	if start < 0 {
		start = 0
	}
	if start > total-height {
		start = total - height
	}
	return start, start + height
}

// View renders the breadcrumb, the current list (or the open dialog), the
// feedback line and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.fit(breadcrumbStyle.Render(strings.Join(m.Breadcrumb(), breadcrumbSep))), "")

	var body string
	switch md := m.modal.(type) {
	case inputModal:
		body = ModalBorder().Render(md.view())
	case deleteModal:
		body = ModalBorder().Render(md.view())
	case helpModal:
		body = ModalBorder().Render(m.renderHelp())
	default:
		body = m.viewList()
	}
	if m.modal != nil {
		clip := lipgloss.NewStyle()
		if h := m.contentHeight(); h > 0 {
			clip = clip.MaxHeight(h)
		}
		if m.width > 0 {
			clip = clip.MaxWidth(m.width)
		}
		body = clip.Render(body)
	}
	sections = append(sections, body)

	sections = append(sections, "", m.fit(feedbackText.Render(m.feedback)))
	sections = append(sections, m.help.View(HelpBindings(m.modal)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewList renders the rows of the current level that fit the terminal,
// each with the cursor, a completion box and the total descendant count.
func (m Model) viewList() string {
	items := m.Items()
	if len(items) == 0 {
		return mutedText.Render("  No items. Press n to add one.")
	}

	start, end := visibleRange(len(items), m.nav.Selected, m.contentHeight())
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		n := items[i]
		var b strings.Builder
		line := StatusBox(tree.CompletionMarker(n)) + " " + n.Title
		if c := tree.CountDescendants(n); c > 0 {
			line += mutedText.Render(fmt.Sprintf(" (%d)", c))
		}
		switch {
		case i == m.nav.Selected:
			b.WriteString(CursorMarker)
			b.WriteString(selectedRow.Render(line))
		case n.IsDone():
			b.WriteString("  ")
			b.WriteString(doneRow.Render(line))
		default:
			b.WriteString("  ")
			b.WriteString(line)
		}
		rows = append(rows, m.fit(b.String()))
	}
	return strings.Join(rows, "\n")
}

// renderHelp renders the help markdown to fit the window.
func (m Model) renderHelp() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return renderMarkdown(m.helpText, width-4)
}

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style and wrap width. A fixed style avoids the
	// terminal background query that WithAutoStyle performs.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// markdownStyle returns the glamour style, honoring GLAMOUR_STYLE.
func markdownStyle() string {
	if s := strings.TrimSpace(os.Getenv("GLAMOUR_STYLE")); s != "" {
		return s
	}
	return "dark"
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := markdownStyle()
	cacheKey := fmt.Sprintf("%s:%d", style, width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[cacheKey]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[cacheKey] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
