// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// RefreshInterval is how often in-flight documents are re-fetched while
// the view is open.
const RefreshInterval = 2 * time.Second

// ErrNoDocumentService indicates the view was built without a document service.
var ErrNoDocumentService = errors.New("document service is required")

// tickMsg drives polling; gen discards ticks from a previous visit.
type tickMsg struct {
	gen int
}

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	tracker         driving.DocumentTracker
	ctx             context.Context

	documents     []domain.Document
	selected      int
	scrollOffset  int
	confirmDelete bool
	gen           int
	active        bool

	width   int
	height  int
	ready   bool
	err     error
	loading bool
}

// NewView creates a new documents view. tracker may be nil, in which
// case the list is only refreshed on reload.
func NewView(s *styles.Styles, documentService driving.DocumentService, tracker driving.DocumentTracker) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		tracker:         tracker,
		ctx:             context.Background(),
		documents:       []domain.Document{},
	}
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the documents and starts polling.
func (v *View) Init() tea.Cmd {
	v.gen++
	v.active = true
	v.loading = true
	v.confirmDelete = false
	return tea.Batch(v.loadDocuments(), v.scheduleTick())
}

// Deactivate stops polling when the view is left.
func (v *View) Deactivate() {
	v.active = false
}

func (v *View) loadDocuments() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := v.documentService.List(ctx, domain.DocumentFilter{})
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) scheduleTick() tea.Cmd {
	if v.tracker == nil {
		return nil
	}
	gen := v.gen
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (v *View) poll() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		_, err := v.tracker.Tick(ctx)
		return messages.DocumentsTicked{Documents: v.tracker.Snapshot(), Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirmDelete {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.setDocuments(msg.Documents)
		if v.tracker != nil {
			v.tracker.Replace(msg.Documents)
		}
		return v, nil

	case tickMsg:
		if msg.gen != v.gen || !v.active {
			return v, nil
		}
		if v.tracker.InFlight() == 0 {
			return v, v.scheduleTick()
		}
		return v, v.poll()

	case messages.DocumentsTicked:
		if msg.Err != nil {
			v.err = msg.Err
		}
		if len(msg.Documents) > 0 {
			v.setDocuments(msg.Documents)
		}
		if !v.active {
			return v, nil
		}
		return v, v.scheduleTick()

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if v.tracker != nil {
			v.tracker.Forget(msg.ID)
		}
		v.removeDocument(msg.ID)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "d":
		if len(v.documents) > 0 {
			v.confirmDelete = true
		}
	case "esc":
		v.Deactivate()
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	}

	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirmDelete = false
	if msg.String() != "y" || v.selected >= len(v.documents) {
		return v, nil
	}

	id := v.documents[v.selected].ID
	ctx := v.ctx
	return v, func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{ID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentDeleted{ID: id, Err: v.documentService.Delete(ctx, id)}
	}
}

func (v *View) setDocuments(docs []domain.Document) {
	v.documents = docs
	if v.selected >= len(docs) {
		v.selected = len(docs) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.adjustScroll()
}

func (v *View) removeDocument(id domain.ID) {
	kept := make([]domain.Document, 0, len(v.documents))
	for _, d := range v.documents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	v.setDocuments(kept)
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, header, help, and padding
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d)", len(v.documents))
	if n := v.inFlight(); n > 0 {
		title += fmt.Sprintf(" - %d processing", n)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.loading && len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents uploaded yet."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	nameWidth := v.nameWidth()
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("  %-*s  %-10s  %-14s  %8s  %s",
		nameWidth, "NAME", "STATUS", "PROGRESS", "SIZE", "UPDATED")))
	b.WriteString("\n")

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i], nameWidth))
		b.WriteString("\n")
	}

	if len(v.documents) > visibleItems {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.documents)),
			len(v.documents))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.confirmDelete && v.selected < len(v.documents) {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %s? [y/N]", v.documents[v.selected].Name)))
		return b.String()
	}
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) nameWidth() int {
	w := v.width - 52
	if w < 12 {
		w = 12
	}
	return w
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.Document, nameWidth int) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.Name
	if name == "" {
		name = string(doc.ID)
	}
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-3]) + "..."
	}

	size := "-"
	if doc.Size > 0 {
		size = humanize.Bytes(uint64(doc.Size))
	}
	updated := "-"
	if !doc.UpdatedAt.IsZero() {
		updated = humanize.Time(doc.UpdatedAt)
	}

	line := fmt.Sprintf("%s%-*s  %-10s  %-14s  %8s  %s",
		indicator, nameWidth, name, doc.Status, progressBar(doc.Progress(), 10), size, updated)

	switch {
	case index == v.selected:
		return v.styles.Selected.Render(line)
	case doc.Status == domain.StatusError:
		return v.styles.Error.Render(line)
	case doc.InFlight():
		return v.styles.Warning.Render(line)
	default:
		return v.styles.Normal.Render(line)
	}
}

// progressBar draws a fixed-width text bar followed by the percentage.
func progressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("%3d%%", percent)
}

func (v *View) inFlight() int {
	n := 0
	for i := range v.documents {
		if v.documents[i].InFlight() {
			n++
		}
	}
	return n
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [d] delete  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// ConfirmingDelete returns true while the delete prompt is visible.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
