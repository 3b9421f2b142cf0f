// Package chat provides the conversation view: a scrolling transcript,
// an input line, and upload progress while a store is being filled.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// ErrNoChatService indicates the view was built without a chat service.
var ErrNoChatService = errors.New("chat service is required")

// View is the chat view.
type View struct {
	styles  *styles.Styles
	service driving.ChatService
	ctx     context.Context

	transcript viewport.Model
	input      *input.Field
	spinner    spinner.Model
	progress   progress.Model

	renderer      *glamour.TermRenderer
	rendererWidth int
	rendered      map[string]string // message ID -> markdown output

	store       *domain.RagStore
	messages    []domain.ChatMessage
	stream      <-chan tea.Msg
	cancel      context.CancelFunc
	streaming   bool
	starting    bool
	step        *driving.UploadStep
	showSources bool
	err         error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view.
func NewView(s *styles.Styles, service driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &View{
		styles:     s,
		service:    service,
		ctx:        context.Background(),
		transcript: viewport.New(80, 16),
		input:      input.NewField(s, ">", "Ask a question about the documents..."),
		spinner:    sp,
		progress:   progress.New(progress.WithDefaultGradient()),
		rendered:   make(map[string]string),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Start opens or resumes a chat with the store.
func (v *View) Start(store domain.RagStore) tea.Cmd {
	v.begin(store)
	ctx := v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		if v.service == nil {
			return messages.ChatStarted{Store: store, Err: ErrNoChatService}
		}
		return messages.ChatStarted{Store: store, Err: v.service.StartWithStore(ctx, &store)}
	})
}

// Upload sends the file at path into the store, waits for processing
// and starts a chat. Progress arrives as UploadStepped messages.
func (v *View) Upload(store domain.RagStore, path string) tea.Cmd {
	v.begin(store)
	v.step = &driving.UploadStep{File: filepath.Base(path), Total: 1}

	ch := make(chan tea.Msg, 8)
	ctx := v.openStream(ch)
	go func() {
		defer close(ch)
		if v.service == nil {
			ch <- messages.ChatStarted{Store: store, Err: ErrNoChatService}
			return
		}
		f, err := os.Open(path)
		if err != nil {
			v.service.Fail(err)
			ch <- messages.ChatStarted{Store: store, Err: err}
			return
		}
		defer f.Close()

		uploads := []domain.UploadRequest{domain.NewFileUpload(f, "")}
		err = v.service.UploadAndStart(ctx, &store, uploads, func(step driving.UploadStep) {
			ch <- messages.UploadStepped{Step: step}
		})
		ch <- messages.ChatStarted{Store: store, Err: err}
	}()
	return tea.Batch(v.spinner.Tick, messages.Next(ch))
}

func (v *View) begin(store domain.RagStore) {
	v.store = &store
	v.messages = nil
	v.rendered = make(map[string]string)
	v.starting = true
	v.streaming = false
	v.step = nil
	v.err = nil
	v.showSources = false
	v.input.Reset()
	v.refresh()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if !v.starting && !v.streaming {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.UploadStepped:
		if v.stream == nil {
			return v, nil
		}
		step := msg.Step
		v.step = &step
		return v, v.next()

	case messages.ChatStarted:
		if v.store == nil && domain.IsInterrupted(msg.Err) {
			// Left over from a conversation closed mid-upload.
			return v, nil
		}
		v.starting = false
		v.step = nil
		v.finishStream()
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.syncMessages()
		return v, v.input.Focus()

	case messages.ChatUpdated:
		if v.stream == nil {
			return v, nil
		}
		v.syncMessages()
		return v, v.next()

	case messages.ChatAnswered:
		if !v.streaming {
			return v, nil
		}
		v.streaming = false
		v.finishStream()
		v.syncMessages()
		if errors.Is(msg.Err, domain.ErrStaleSession) {
			return v, tea.Batch(
				notify("This store is no longer available; the conversation was closed", messages.LevelWarning),
				changeView(messages.ViewStores),
			)
		}
		if msg.Err != nil {
			return v, notify(msg.Err.Error(), messages.LevelError)
		}
		return v, nil

	case messages.ChatEnded:
		v.store = nil
		v.messages = nil
		v.refresh()
		if msg.Err != nil {
			return v, notify(msg.Err.Error(), messages.LevelError)
		}
		return v, changeView(messages.ViewStores)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, changeView(messages.ViewMenu)
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	if v.starting || v.streaming || v.store == nil || v.service == nil {
		return v, nil
	}

	switch msg.String() {
	case "enter":
		return v, v.send()
	case "ctrl+o":
		v.showSources = !v.showSources
		v.refresh()
		return v, nil
	case "ctrl+n":
		store := *v.store
		ctx := v.ctx
		v.starting = true
		return v, tea.Batch(v.spinner.Tick, func() tea.Msg {
			if err := v.service.End(ctx); err != nil {
				return messages.ChatStarted{Store: store, Err: err}
			}
			return messages.ChatStarted{Store: store, Err: v.service.StartWithStore(ctx, &store)}
		})
	case "ctrl+e":
		ctx := v.ctx
		return v, func() tea.Msg { return messages.ChatEnded{Err: v.service.End(ctx)} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) send() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.service == nil {
		return nil
	}
	v.input.Reset()
	v.streaming = true

	ch := make(chan tea.Msg, 16)
	ctx := v.openStream(ch)
	go func() {
		defer close(ch)
		answer, err := v.service.Send(ctx, text, func(m domain.ChatMessage) {
			ch <- messages.ChatUpdated{Message: m}
		})
		ch <- messages.ChatAnswered{Message: answer, Err: err}
	}()
	return tea.Batch(v.spinner.Tick, messages.Next(ch))
}

// openStream makes ch the running stream and returns the context its
// producer runs under.
func (v *View) openStream(ch <-chan tea.Msg) context.Context {
	v.closeStream()
	ctx, cancel := context.WithCancel(v.ctx)
	v.stream = ch
	v.cancel = cancel
	return ctx
}

// closeStream cancels the running stream and reads whatever its producer
// still sends, so the producer can return.
func (v *View) closeStream() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.stream != nil {
		go func(ch <-chan tea.Msg) {
			for range ch {
			}
		}(v.stream)
		v.stream = nil
	}
}

// finishStream releases a stream whose producer has returned.
func (v *View) finishStream() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.stream = nil
}

// next keeps relaying the running stream.
func (v *View) next() tea.Cmd {
	if v.stream == nil {
		return nil
	}
	return messages.Next(v.stream)
}

func (v *View) syncMessages() {
	if v.service != nil {
		v.messages = v.service.Messages()
	}
	v.refresh()
}

// refresh re-renders the transcript and keeps it scrolled to the end.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if v.store == nil {
		return v.styles.Muted.Render("No conversation. Pick a store from the menu.")
	}

	var b strings.Builder
	if insights := v.insights(); !insights.IsEmpty() {
		if insights.Summary != "" {
			b.WriteString(v.styles.Muted.Render(insights.Summary))
			b.WriteString("\n\n")
		}
		if len(v.messages) == 0 && len(insights.SuggestedQuestions) > 0 {
			b.WriteString(v.styles.Subtitle.Render("Try asking"))
			b.WriteString("\n")
			for _, q := range insights.SuggestedQuestions {
				b.WriteString(v.styles.Normal.Render("  • " + q))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	last := len(v.messages) - 1
	for i := range v.messages {
		m := &v.messages[i]
		if m.Role == domain.RoleUser {
			b.WriteString(v.styles.UserMessage.Render("You"))
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Width(v.width - 4).Render(m.Text()))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(v.styles.ModelMessage.Render("Assistant"))
		b.WriteString("\n")
		if i == last && v.streaming {
			text := m.Text()
			if text == "" {
				text = v.spinner.View() + " thinking"
			}
			b.WriteString(lipgloss.NewStyle().Width(v.width - 4).Render(text))
		} else {
			b.WriteString(v.renderMarkdown(m))
		}
		b.WriteString("\n")
		if n := len(m.GroundingChunks); n > 0 {
			if v.showSources && i == last {
				b.WriteString(v.renderSources(m.GroundingChunks))
			} else {
				b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d sources", n)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) insights() *domain.ChatInsights {
	if v.service == nil {
		return nil
	}
	return v.service.Insights()
}

// renderMarkdown renders finished answers, caching by message ID.
func (v *View) renderMarkdown(m *domain.ChatMessage) string {
	text := m.Text()
	key := m.ID + "\x00" + fmt.Sprint(len(text))
	if out, ok := v.rendered[key]; ok {
		return out
	}

	wrap := v.width - 4
	if wrap < 20 {
		wrap = 20
	}
	if v.renderer == nil || v.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
		if err != nil {
			return text
		}
		v.renderer = r
		v.rendererWidth = wrap
		v.rendered = make(map[string]string)
	}

	out, err := v.renderer.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")
	v.rendered[key] = out
	return out
}

func (v *View) renderSources(chunks []domain.GroundingChunk) string {
	lines := []string{v.styles.Subtitle.Render("Sources")}
	for i := range chunks {
		rc := chunks[i].RetrievedContext
		if rc == nil {
			continue
		}
		label := rc.Title
		if label == "" {
			label = strings.Join(strings.Fields(rc.Text), " ")
		}
		if r := []rune(label); len(r) > v.width-10 && v.width > 20 {
			label = string(r[:v.width-13]) + "..."
		}
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%d] %s", i+1, label)))
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Chat"
	if v.store != nil {
		title = fmt.Sprintf("Chat - %s (%d documents)", v.store.Label(), v.store.DocumentCount)
	}
	sections := []string{v.styles.Title.Render(title), ""}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "",
			v.styles.Help.Render("[esc] back"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case v.step != nil:
		sections = append(sections, v.renderUpload())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case v.starting:
		sections = append(sections, v.spinner.View()+" Opening conversation...")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, v.transcript.View(), "", v.input.View(), "",
		v.styles.Help.Render("[enter] send  [ctrl+o] sources  [ctrl+n] new  [ctrl+e] end  [pgup/pgdn] scroll  [esc] menu"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderUpload() string {
	step := v.step
	label := fmt.Sprintf("Uploading %s", step.File)
	if step.Total > 1 {
		label = fmt.Sprintf("[%d/%d] %s", step.Index+1, step.Total, label)
	}
	status := string(step.Status)
	if status == "" {
		status = "sending"
	}
	lines := []string{
		v.spinner.View() + " " + label,
		v.progress.ViewAs(float64(step.Progress) / 100),
		v.styles.Muted.Render(status),
	}
	if step.Message != "" {
		lines = append(lines, v.styles.Muted.Render(step.Message))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// title, blank, blank, input (3 rows with border), blank, help
	h := height - 9
	if h < 3 {
		h = 3
	}
	v.transcript.Width = width
	v.transcript.Height = h
	v.input.SetWidth(width)
	v.progress.Width = width - 4
	v.refresh()
}

// Store returns the store of the open conversation, or nil.
func (v *View) Store() *domain.RagStore {
	return v.store
}

// Messages returns the displayed conversation.
func (v *View) Messages() []domain.ChatMessage {
	return v.messages
}

// Streaming reports whether an answer is arriving.
func (v *View) Streaming() bool {
	return v.streaming
}

// Starting reports whether the chat is being opened.
func (v *View) Starting() bool {
	return v.starting
}

// Err returns the error that stopped the chat from starting.
func (v *View) Err() error {
	return v.err
}

// Close drops the open conversation without contacting the backend. A
// running answer or upload is cancelled.
func (v *View) Close() {
	v.closeStream()
	v.store = nil
	v.messages = nil
	v.streaming = false
	v.starting = false
	v.step = nil
	v.err = nil
	v.rendered = make(map[string]string)
	v.input.Reset()
	v.refresh()
}

func notify(text string, level messages.Level) tea.Cmd {
	return func() tea.Msg { return messages.Notify{Text: text, Level: level} }
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}
