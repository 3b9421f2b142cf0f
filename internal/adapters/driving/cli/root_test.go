package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

var (
	testUser = domain.AuthUser{
		ID:       "user-1",
		Email:    "ana@example.com",
		Name:     "Ana",
		Role:     domain.RoleStudent,
		IsActive: true,
	}
	testStore = domain.RagStore{
		ID:            "store-1",
		Name:          "calculus",
		DisplayName:   "Calculus I",
		DocumentCount: 3,
		RagStoreName:  "ragStores/calculus",
	}
)

// mockAuthService implements driving.AuthService for testing.
type mockAuthService struct {
	user      *domain.AuthUser
	err       error
	creds     domain.Credentials
	register  domain.RegisterRequest
	loggedOut bool
}

func (m *mockAuthService) Login(_ context.Context, creds domain.Credentials) (*domain.AuthUser, error) {
	m.creds = creds
	if m.err != nil {
		return nil, m.err
	}
	u := testUser
	u.Email = creds.Email
	m.user = &u
	return m.user, nil
}

func (m *mockAuthService) Register(_ context.Context, req domain.RegisterRequest) (*domain.AuthUser, error) {
	m.register = req
	if m.err != nil {
		return nil, m.err
	}
	m.user = &domain.AuthUser{ID: "user-2", Email: req.Email, Name: req.Name, Role: req.Role, IsActive: true}
	return m.user, nil
}

func (m *mockAuthService) Logout(_ context.Context) error {
	m.loggedOut = true
	m.user = nil
	return m.err
}

func (m *mockAuthService) CurrentUser(_ context.Context) (*domain.AuthUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, domain.ErrAuthRequired
	}
	return m.user, nil
}

func (m *mockAuthService) Session(_ context.Context) (*domain.AuthSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, nil
	}
	return &domain.AuthSession{
		AccessToken: "access",
		User:        m.user,
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (m *mockAuthService) RefreshAccessToken(_ context.Context) error { return nil }

func (m *mockAuthService) OnLogout(_ func(ctx context.Context, userID string)) {}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs     []domain.Document
	err      error
	uploaded []string
	finalDoc *domain.Document
	moved    map[domain.ID]domain.ID
	deleted  []domain.ID
	filter   domain.DocumentFilter
}

func (m *mockDocumentService) Upload(_ context.Context, req domain.UploadRequest, _ domain.UploadProgressFunc) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.uploaded = append(m.uploaded, req.Name)
	return &domain.Document{
		ID:         domain.ID(fmt.Sprintf("doc-%d", len(m.uploaded)+8)),
		Name:       req.Name,
		Status:     domain.StatusUploaded,
		Department: req.Department,
	}, nil
}

func (m *mockDocumentService) WaitForProcessing(_ context.Context, id domain.ID, onProgress domain.ProcessingProgressFunc) (*domain.Document, error) {
	if onProgress != nil {
		onProgress(50, domain.StatusEmbedding, "")
		onProgress(60, domain.StatusEmbedding, "")
		onProgress(100, domain.StatusCompleted, "")
	}
	if m.finalDoc != nil {
		return m.finalDoc, nil
	}
	return &domain.Document{ID: id, Name: "notes.txt", Status: domain.StatusCompleted}, nil
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.filter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id domain.ID) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id domain.ID) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Move(_ context.Context, id, storeID domain.ID) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.moved == nil {
		m.moved = make(map[domain.ID]domain.ID)
	}
	m.moved[id] = storeID
	return &domain.Document{ID: id, RagStoreID: storeID}, nil
}

// mockTracker implements driving.DocumentTracker for testing.
type mockTracker struct{}

func (m *mockTracker) Track(_ ...domain.Document)          {}
func (m *mockTracker) Replace(_ []domain.Document)         {}
func (m *mockTracker) Forget(_ domain.ID)                  {}
func (m *mockTracker) Snapshot() []domain.Document         { return nil }
func (m *mockTracker) InFlight() int                       { return 0 }
func (m *mockTracker) Tick(_ context.Context) (int, error) { return 0, nil }

// mockStoreService implements driving.StoreService for testing.
type mockStoreService struct {
	stores  []domain.RagStore
	perms   []domain.StorePermission
	err     error
	created domain.StoreInput
	updated domain.StoreInput
	deleted []domain.ID
	revoked []domain.ID
}

func (m *mockStoreService) List(_ context.Context) ([]domain.RagStore, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stores, nil
}

func (m *mockStoreService) Get(ctx context.Context, id domain.ID) (*domain.RagStore, error) {
	return m.Find(ctx, string(id))
}

func (m *mockStoreService) Find(_ context.Context, ref string) (*domain.RagStore, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.stores {
		st := &m.stores[i]
		if string(st.ID) == ref || strings.EqualFold(st.Name, ref) {
			return st, nil
		}
	}
	return nil, fmt.Errorf("store %q: %w", ref, domain.ErrNotFound)
}

func (m *mockStoreService) Create(_ context.Context, in domain.StoreInput) (*domain.RagStore, error) {
	m.created = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RagStore{ID: "store-9", Name: in.Name, DisplayName: in.DisplayName}, nil
}

func (m *mockStoreService) Update(_ context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error) {
	m.updated = in
	if m.err != nil {
		return nil, m.err
	}
	st := domain.RagStore{ID: id, Name: in.Name, DisplayName: in.DisplayName}
	if st.Name == "" {
		st.Name = "calculus"
	}
	return &st, nil
}

func (m *mockStoreService) Delete(_ context.Context, id domain.ID) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockStoreService) ListPermissions(_ context.Context, _ domain.ID) ([]domain.StorePermission, error) {
	return m.perms, m.err
}

func (m *mockStoreService) Grant(_ context.Context, storeID, userID domain.ID, level domain.PermissionLevel) (*domain.StorePermission, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.StorePermission{UserID: userID, Permission: level}, nil
}

func (m *mockStoreService) Revoke(_ context.Context, _, userID domain.ID) error {
	m.revoked = append(m.revoked, userID)
	return m.err
}

// mockChatService implements driving.ChatService for testing. Answers
// arrive in two fragments and cite one source.
type mockChatService struct {
	store     *domain.RagStore
	messages  []domain.ChatMessage
	sessions  []domain.ChatSession
	history   []domain.ChatMessage
	startErr  error
	sendErr   error
	started   int
	ended     int
	questions []string
	uploads   []string
}

func (m *mockChatService) State() domain.AppStatus {
	if m.store != nil {
		return domain.AppChatting
	}
	return domain.AppWelcome
}

func (m *mockChatService) Session() *domain.ChatSession {
	if m.store == nil {
		return nil
	}
	return &domain.ChatSession{ID: "session-1", RagStoreName: m.store.RagStoreName}
}

func (m *mockChatService) Store() *domain.RagStore        { return m.store }
func (m *mockChatService) Messages() []domain.ChatMessage { return m.messages }
func (m *mockChatService) Insights() *domain.ChatInsights { return nil }
func (m *mockChatService) LastError() error               { return nil }
func (m *mockChatService) Fail(_ error)                   {}
func (m *mockChatService) Reset()                         { m.store = nil; m.messages = nil }
func (m *mockChatService) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	return m.sessions, nil
}

func (m *mockChatService) History(_ context.Context, _ domain.ID) ([]domain.ChatMessage, error) {
	return m.history, nil
}

func (m *mockChatService) StartWithStore(_ context.Context, store *domain.RagStore) error {
	if m.startErr != nil {
		return m.startErr
	}
	if !store.HasDocuments() {
		return domain.ErrStoreEmpty
	}
	m.started++
	m.store = store
	return nil
}

func (m *mockChatService) Send(_ context.Context, text string, onUpdate func(domain.ChatMessage)) (*domain.ChatMessage, error) {
	m.questions = append(m.questions, text)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	answer := answerFor(text)
	if onUpdate != nil {
		onUpdate(domain.ChatMessage{Role: domain.RoleModel, Parts: []domain.Part{{Text: "The answer"}}})
		onUpdate(answer)
	}
	return &answer, nil
}

func (m *mockChatService) End(_ context.Context) error {
	m.ended++
	m.store = nil
	m.messages = nil
	return nil
}

func (m *mockChatService) UploadAndStart(_ context.Context, store *domain.RagStore, uploads []domain.UploadRequest, onStep func(driving.UploadStep)) error {
	for i, u := range uploads {
		m.uploads = append(m.uploads, u.Name)
		onStep(driving.UploadStep{File: u.Name, Index: i, Total: len(uploads), Progress: 0, Status: domain.StatusUploaded})
		onStep(driving.UploadStep{File: u.Name, Index: i, Total: len(uploads), Progress: 100, Status: domain.StatusCompleted})
	}
	m.store = store
	return nil
}

func (m *mockChatService) Ask(_ context.Context, store *domain.RagStore, question string) (*domain.ChatMessage, error) {
	if !store.HasDocuments() {
		return nil, domain.ErrStoreEmpty
	}
	m.questions = append(m.questions, question)
	answer := answerFor(question)
	return &answer, nil
}

func answerFor(string) domain.ChatMessage {
	return domain.ChatMessage{
		Role:  domain.RoleModel,
		Parts: []domain.Part{{Text: "The answer is 42"}},
		GroundingChunks: []domain.GroundingChunk{
			{RetrievedContext: &domain.RetrievedContext{Title: "ch1.pdf", Text: "forty two"}},
		},
	}
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	prompt    domain.SystemPrompt
	general   domain.GeneralSettings
	cfg       domain.SystemConfig
	err       error
	savedFor  []string
	loadedFor []string
	update    domain.GeneralSettings
}

func (m *mockSettingsService) SystemPrompt(_ context.Context) (*domain.SystemPrompt, error) {
	if m.err != nil {
		return nil, m.err
	}
	p := m.prompt
	return &p, nil
}

func (m *mockSettingsService) UpdateSystemPrompt(_ context.Context, prompt string) (*domain.SystemPrompt, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.prompt.Prompt = prompt
	p := m.prompt
	return &p, nil
}

func (m *mockSettingsService) ResetSystemPrompt(_ context.Context) (*domain.SystemPrompt, error) {
	m.prompt = domain.SystemPrompt{Prompt: "You are a helpful assistant."}
	p := m.prompt
	return &p, m.err
}

func (m *mockSettingsService) GeneralSettings(_ context.Context) (domain.GeneralSettings, error) {
	return m.general, m.err
}

func (m *mockSettingsService) UpdateGeneralSettings(_ context.Context, s domain.GeneralSettings) (domain.GeneralSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.update = s
	for k, v := range s {
		m.general[k] = v
	}
	return m.general, nil
}

func (m *mockSettingsService) ResetGeneralSettings(_ context.Context) (domain.GeneralSettings, error) {
	m.general = domain.GeneralSettings{"max_tokens": 1024}
	return m.general, m.err
}

func (m *mockSettingsService) SystemConfig() domain.SystemConfig { return m.cfg }

func (m *mockSettingsService) LoadSystemConfig(_ context.Context, userID string) (domain.SystemConfig, error) {
	m.loadedFor = append(m.loadedFor, userID)
	return m.cfg, m.err
}

func (m *mockSettingsService) SaveSystemConfig(userID string, cfg domain.SystemConfig) error {
	if m.err != nil {
		return m.err
	}
	m.savedFor = append(m.savedFor, userID)
	m.cfg = cfg
	return nil
}

func (m *mockSettingsService) ReloadSystemConfig(_ string) domain.SystemConfig { return m.cfg }

func (m *mockSettingsService) ResetSystemConfig() domain.SystemConfig {
	m.cfg = domain.DefaultSystemConfig()
	return m.cfg
}

// mockAnalyticsService implements driving.AnalyticsService for testing.
type mockAnalyticsService struct {
	err   error
	limit int
}

func (m *mockAnalyticsService) Dashboard(_ context.Context) (*domain.DashboardSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DashboardSummary{
		TotalDocuments:     12345,
		TotalStores:        4,
		TotalSessions:      87,
		TotalQueries:       1500,
		ActiveUsers:        23,
		DocumentsThisWeek:  17,
		ProcessingFailures: 2,
	}, nil
}

func (m *mockAnalyticsService) Stats(_ context.Context) (domain.UsageStats, error) {
	return domain.UsageStats{"queries_today": 12, "avg_latency_ms": 840}, m.err
}

func (m *mockAnalyticsService) Activity(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	m.limit = limit
	return []domain.ActivityEntry{
		{ID: "a-1", Type: "upload", Description: "Uploaded ch1.pdf", UserEmail: "ana@example.com", CreatedAt: time.Now()},
	}, m.err
}

func (m *mockAnalyticsService) TopQueries(_ context.Context, limit int) ([]domain.QueryStat, error) {
	m.limit = limit
	return []domain.QueryStat{{Query: "what is a derivative", Count: 9, LastAsked: time.Now()}}, m.err
}

func (m *mockAnalyticsService) Track(_ context.Context, _ string, _ map[string]any) {}

// mockUserService implements driving.UserService for testing.
type mockUserService struct {
	users   []domain.ManagedUser
	err     error
	created domain.CreateUserRequest
	updated domain.UpdateUserRequest
	deleted []domain.ID
}

func (m *mockUserService) List(_ context.Context) ([]domain.ManagedUser, error) {
	return m.users, m.err
}

func (m *mockUserService) Create(_ context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	return &domain.ManagedUser{AuthUser: domain.AuthUser{ID: "user-7", Email: req.Email, Name: req.Name, Role: role, IsActive: true}}, nil
}

func (m *mockUserService) Update(_ context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error) {
	m.updated = req
	if m.err != nil {
		return nil, m.err
	}
	u := domain.ManagedUser{AuthUser: domain.AuthUser{ID: id, Email: "ana@example.com"}}
	if req.Email != nil {
		u.Email = *req.Email
	}
	return &u, nil
}

func (m *mockUserService) Delete(_ context.Context, id domain.ID) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockUserService) ToggleStatus(_ context.Context, id domain.ID) (*domain.ManagedUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ManagedUser{AuthUser: domain.AuthUser{ID: id, Email: "bo@example.com", IsActive: false}}, nil
}

func (m *mockUserService) Stats(_ context.Context) (*domain.UserStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UserStats{
		Total:    10,
		Active:   8,
		Inactive: 2,
		ByRole:   map[domain.UserRole]int{domain.RoleStudent: 7, domain.RoleAdmin: 3},
	}, nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	tasks   []domain.ScheduledTask
	results []domain.TaskResult
	runErr  error
	fail    bool
	limit   int
}

func (m *mockScheduler) Start(_ context.Context) error { return nil }
func (m *mockScheduler) Stop() error                   { return nil }

func (m *mockScheduler) Tasks(_ context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, nil
}

func (m *mockScheduler) History(_ context.Context, _ string, limit int) ([]domain.TaskResult, error) {
	m.limit = limit
	return m.results, nil
}

func (m *mockScheduler) RunNow(_ context.Context, taskID string) (*domain.TaskResult, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &domain.TaskResult{
		TaskID:         taskID,
		StartedAt:      start,
		EndedAt:        start.Add(1500 * time.Millisecond),
		Success:        !m.fail,
		ItemsProcessed: 3,
	}
	if m.fail {
		r.Error = "backend unreachable"
	}
	return r, nil
}

// mockHealthChecker implements driven.HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Health(_ context.Context) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"status": "healthy", "database": "up"}, nil
}

// testServices holds the mocks installed by setupTestServices so tests
// can adjust them.
type testServices struct {
	auth      *mockAuthService
	documents *mockDocumentService
	stores    *mockStoreService
	chat      *mockChatService
	settings  *mockSettingsService
	analytics *mockAnalyticsService
	users     *mockUserService
	scheduler *mockScheduler
	health    *mockHealthChecker
}

var mocks *testServices

func setupTestServices() func() {
	progress := 40
	store := testStore
	mocks = &testServices{
		auth: &mockAuthService{},
		documents: &mockDocumentService{
			docs: []domain.Document{
				{ID: "doc-1", Name: "Test Document 1", Status: domain.StatusCompleted, Size: 2048, RagStoreID: "store-1"},
				{ID: "doc-2", Name: "Test Document 2", Status: domain.StatusEmbedding, ProgressPercent: &progress},
			},
		},
		stores: &mockStoreService{
			stores: []domain.RagStore{
				store,
				{ID: "store-2", Name: "empty", DocumentCount: 0, RagStoreName: "ragStores/empty"},
			},
		},
		chat: &mockChatService{},
		settings: &mockSettingsService{
			prompt:  domain.SystemPrompt{Prompt: "Answer from the documents only."},
			general: domain.GeneralSettings{"max_tokens": 1024, "model": "gemini"},
			cfg:     domain.DefaultSystemConfig(),
		},
		analytics: &mockAnalyticsService{},
		users: &mockUserService{
			users: []domain.ManagedUser{
				{AuthUser: domain.AuthUser{ID: "user-1", Email: "ana@example.com", Name: "Ana", Role: domain.RoleStudent, IsActive: true}},
			},
		},
		scheduler: &mockScheduler{
			tasks: []domain.ScheduledTask{
				{ID: "document_poll", Name: "Document polling", Interval: 5 * time.Second, Enabled: true},
			},
		},
		health: &mockHealthChecker{},
	}

	SetServices(&Services{
		Auth:      mocks.auth,
		Documents: mocks.documents,
		Tracker:   &mockTracker{},
		Stores:    mocks.stores,
		Chat:      mocks.chat,
		Settings:  mocks.settings,
		Analytics: mocks.analytics,
		Users:     mocks.users,
		Scheduler: mocks.scheduler,
		Health:    mocks.health,
		APIURL:    "http://localhost:8000",
	})

	return func() {
		SetServices(nil)
		mocks = nil
		resetFlags()
	}
}

// resetFlags clears flag variables, which outlive a single Execute.
func resetFlags() {
	jsonOutput = false
	authEmail, authPassword, authName, authRole = "", "", "", ""
	storeDisplayName, storeDescription, storeNewName = "", "", ""
	permLevel = string(domain.PermissionRead)
	uploadDepartment, uploadStore, uploadWait = "", "", false
	listStore, listStatus = "", ""
	chatUploads = nil
	analyticsLimit = 0
	userEmail, userName, userPassword, userRole = "", "", "", ""
	historyLimit = 10
	rootCmd.SetIn(nil)
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "ragchat", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{
		"login", "register", "logout", "whoami", "store", "document", "chat",
		"settings", "analytics", "users", "status", "schedule", "tui", "mcp", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestSetServices_NilClearsServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	SetServices(nil)

	assert.Nil(t, authService)
	assert.Nil(t, chatService)
	assert.Empty(t, apiURL)
}

func TestInitServices_UsesBootstrap(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)
	defer resetFlags()

	var got Options
	old := bootstrap
	SetBootstrap(func(opts Options) (*Services, error) {
		got = opts
		return &Services{Auth: &mockAuthService{user: &testUser}, APIURL: opts.APIURL}, nil
	})
	defer SetBootstrap(old)
	defer func() { apiURLFlag = "" }()

	out, err := execute(t, "--api-url", "http://backend:9000", "whoami")

	assert.NoError(t, err)
	assert.Equal(t, "http://backend:9000", got.APIURL)
	assert.Contains(t, out, "ana@example.com")
}

func TestInitServices_BootstrapError(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	old := bootstrap
	SetBootstrap(func(Options) (*Services, error) {
		return nil, errors.New("opening data dir: permission denied")
	})
	defer SetBootstrap(old)

	_, err := execute(t, "whoami")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestInitServices_SkipsBootstrapForVersion(t *testing.T) {
	SetServices(nil)

	called := false
	old := bootstrap
	SetBootstrap(func(Options) (*Services, error) {
		called = true
		return &Services{}, nil
	})
	defer SetBootstrap(old)

	_, err := execute(t, "version")

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestDescribeError(t *testing.T) {
	assert.NoError(t, describeError(nil))
	assert.Contains(t, describeError(domain.ErrAuthRequired).Error(), "ragchat login")
	assert.Contains(t, describeError(fmt.Errorf("x: %w", domain.ErrTokenRefreshFailed)).Error(), "session expired")
	assert.Contains(t, describeError(domain.ErrAuthExpired).Error(), "session expired")

	other := errors.New("boom")
	assert.Equal(t, other, describeError(other))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestHumanHelpers(t *testing.T) {
	assert.Equal(t, "-", humanBytes(0))
	assert.Equal(t, "2.0 kB", humanBytes(2048))
	assert.Equal(t, "-", humanTime(time.Time{}))
	assert.Contains(t, humanTime(time.Now().Add(-2*time.Hour)), "hours ago")
}

func TestRenderMarkdown_NonTerminalReturnsRaw(t *testing.T) {
	buf := new(bytes.Buffer)
	assert.Equal(t, "# Title", renderMarkdown(buf, "# Title"))
}

func TestPrintTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := printTable(cmd, []string{"ID", "NAME", "STATUS"}, [][]string{
		{"doc-1", "syllabus.pdf", "completed"},
		{"doc-12", "a.txt", "chunking"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	nameCol := strings.Index(lines[0], "NAME")
	assert.Equal(t, nameCol, strings.Index(lines[1], "syllabus.pdf"))
	assert.Equal(t, nameCol, strings.Index(lines[2], "a.txt"))
	statusCol := strings.Index(lines[0], "STATUS")
	assert.Equal(t, statusCol, strings.Index(lines[2], "chunking"))
	assert.NotContains(t, buf.String(), "│")
}
