// Package stores provides the store picker that chats start from.
package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// ErrNoStoreService indicates the view was built without a store service.
var ErrNoStoreService = errors.New("store service is required")

// View lists stores. Enter starts a chat; u uploads a file first.
type View struct {
	styles  *styles.Styles
	service driving.StoreService
	ctx     context.Context

	list   *list.ItemList
	stores []domain.RagStore
	upload *input.Field // non-nil while asking for a file path

	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a stores view.
func NewView(s *styles.Styles, service driving.StoreService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		list:    list.NewItemList(s, "Stores", "No stores available. Ask an administrator to create one."),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the stores.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.upload = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.service == nil {
			return messages.StoresLoaded{Err: ErrNoStoreService}
		}
		stores, err := v.service.List(ctx)
		return messages.StoresLoaded{Stores: stores, Err: err}
	}
}

// Update handles messages for the stores view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StoresLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.SetStores(msg.Stores)
		}
		return v, nil

	case tea.KeyMsg:
		if v.upload != nil {
			return v.handleUploadKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "r":
		v.loading = true
		return v, v.load()
	case "enter":
		store := v.SelectedStore()
		if store == nil {
			return v, nil
		}
		if !store.HasDocuments() {
			text := fmt.Sprintf("%s has no documents yet; press u to upload one", store.Label())
			return v, func() tea.Msg { return messages.Notify{Text: text, Level: messages.LevelWarning} }
		}
		selected := *store
		return v, func() tea.Msg { return messages.StoreSelected{Store: selected} }
	case "u":
		if v.SelectedStore() == nil {
			return v, nil
		}
		v.upload = input.NewField(v.styles, "File:", "/path/to/document.pdf")
		v.upload.SetWidth(v.width)
		return v, v.upload.Init()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) handleUploadKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only form keys are handled
	switch msg.Type {
	case tea.KeyEsc:
		v.upload = nil
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.upload.Value())
		store := v.SelectedStore()
		v.upload = nil
		if path == "" || store == nil {
			return v, nil
		}
		req := messages.UploadRequested{Store: *store, Path: path}
		return v, func() tea.Msg { return req }
	}

	var cmd tea.Cmd
	v.upload, cmd = v.upload.Update(msg)
	return v, cmd
}

// SetStores replaces the listed stores.
func (v *View) SetStores(stores []domain.RagStore) {
	v.stores = stores
	items := make([]list.Item, len(stores))
	for i := range stores {
		s := &stores[i]
		meta := fmt.Sprintf("%d docs", s.DocumentCount)
		if !s.HasDocuments() {
			meta = "empty"
		}
		items[i] = list.Item{Title: s.Label(), Meta: meta, Detail: s.Description}
	}
	v.list.SetItems(items)
}

// SelectedStore returns the highlighted store, or nil.
func (v *View) SelectedStore() *domain.RagStore {
	i := v.list.Selected()
	if i < 0 || i >= len(v.stores) {
		return nil
	}
	return &v.stores[i]
}

// View renders the stores view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Choose a store to chat with"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading stores..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")

	if v.upload != nil {
		store := v.SelectedStore()
		if store != nil {
			b.WriteString(v.styles.Subtitle.Render("Upload into " + store.Label()))
			b.WriteString("\n")
		}
		b.WriteString(v.upload.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] upload and chat  [esc] cancel"))
		return b.String()
	}

	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] chat  [u] upload  [r] reload  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-8)
	if v.upload != nil {
		v.upload.SetWidth(width)
	}
}

// Stores returns the listed stores.
func (v *View) Stores() []domain.RagStore {
	return v.stores
}

// Uploading reports whether the file prompt is open.
func (v *View) Uploading() bool {
	return v.upload != nil
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
