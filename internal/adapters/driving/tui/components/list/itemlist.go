// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
)

// Item is one row of a list.
type Item struct {
	// Title is the main label.
	Title string
	// Meta is right-aligned next to the title, e.g. a count or status.
	Meta string
	// Detail is shown muted under the title when non-empty.
	Detail string
}

// ItemList displays items in a navigable, scrolling list.
type ItemList struct {
	title    string
	items    []Item
	selected int
	offset   int
	styles   *styles.Styles
	width    int
	height   int
	empty    string
}

// NewItemList creates a list with a header and an empty-state text.
func NewItemList(s *styles.Styles, title, empty string) *ItemList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ItemList{
		title:  title,
		styles: s,
		width:  80,
		height: 10,
		empty:  empty,
	}
}

// Init initialises the list.
func (r *ItemList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ItemList) Update(msg tea.Msg) (*ItemList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *ItemList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render(r.empty)
	}

	lines := make([]string, 0, len(r.items)*2+3)
	header := r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.title, len(r.items)))
	lines = append(lines, header, "")

	visible := r.visibleCount()
	end := r.offset + visible
	if end > len(r.items) {
		end = len(r.items)
	}
	for i := r.offset; i < end; i++ {
		lines = append(lines, r.renderItem(i, &r.items[i]))
	}

	if len(r.items) > visible {
		lines = append(lines, "", r.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", r.offset+1, end, len(r.items))))
	}
	return strings.Join(lines, "\n")
}

// visibleCount is how many items fit; each takes up to two lines.
func (r *ItemList) visibleCount() int {
	n := (r.height - 4) / 2
	if n < 1 {
		n = 1
	}
	return n
}

func (r *ItemList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	titleWidth := r.width - lipgloss.Width(item.Meta) - 6
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := item.Title
	if title == "" {
		title = "(untitled)"
	}
	if lipgloss.Width(title) > titleWidth {
		title = string([]rune(title)[:titleWidth-3]) + "..."
	}

	var line string
	if index == r.selected {
		line = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, titleWidth, title, item.Meta))
	} else {
		line = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, titleWidth, title)) +
			r.styles.Muted.Render(item.Meta)
	}

	if item.Detail != "" {
		detail := item.Detail
		if limit := r.width - 6; limit > 20 && lipgloss.Width(detail) > limit {
			detail = string([]rune(detail)[:limit-3]) + "..."
		}
		line += "\n" + r.styles.Muted.Render("    "+detail)
	}
	return line
}

// SetItems replaces the items, keeping the selection in range.
func (r *ItemList) SetItems(items []Item) {
	r.items = items
	if r.selected >= len(items) {
		r.selected = len(items) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
	r.adjustScroll()
}

// Items returns the current items.
func (r *ItemList) Items() []Item {
	return r.items
}

// Selected returns the index of the selected item.
func (r *ItemList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ItemList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
		r.adjustScroll()
	}
}

// MoveUp moves selection up.
func (r *ItemList) MoveUp() {
	if r.selected > 0 {
		r.selected--
		r.adjustScroll()
	}
}

// MoveDown moves selection down.
func (r *ItemList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
		r.adjustScroll()
	}
}

func (r *ItemList) adjustScroll() {
	visible := r.visibleCount()
	if r.selected < r.offset {
		r.offset = r.selected
	} else if r.selected >= r.offset+visible {
		r.offset = r.selected - visible + 1
	}
	if r.offset < 0 {
		r.offset = 0
	}
}

// SetDimensions sets the component dimensions.
func (r *ItemList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
	r.adjustScroll()
}

// Count returns the number of items.
func (r *ItemList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ItemList) IsEmpty() bool {
	return len(r.items) == 0
}
