package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// --- Fake backend ports shared by the service tests ---

type fakeAuthAPI struct {
	mu          sync.Mutex
	loginResp   *domain.TokenResponse
	loginErr    error
	refreshResp *domain.TokenResponse
	refreshErr  error
	me          *domain.AuthUser
	meErr       error
	logoutErr   error
	logoutCalls int
	meCalls     int
}

var _ driven.AuthAPI = (*fakeAuthAPI)(nil)

func (f *fakeAuthAPI) Login(_ context.Context, _ domain.Credentials) (*domain.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	resp := *f.loginResp
	return &resp, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenResponse, error) {
	return f.Login(ctx, domain.Credentials{Email: req.Email, Password: req.Password})
}

func (f *fakeAuthAPI) Refresh(_ context.Context, _ string) (*domain.TokenResponse, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	resp := *f.refreshResp
	return &resp, nil
}

func (f *fakeAuthAPI) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthAPI) Me(_ context.Context) (*domain.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.me
	return &u, nil
}

// fakeDocumentAPI replays a status sequence per document on GetDocument.
type fakeDocumentAPI struct {
	mu        sync.Mutex
	sequences map[domain.ID][]domain.Document
	getErr    map[domain.ID]error
	gets      map[domain.ID]int
	uploaded  []string
	uploadErr error
	moved     map[domain.ID]domain.ID
	deleted   []domain.ID
	nextID    int
}

var _ driven.DocumentAPI = (*fakeDocumentAPI)(nil)

func newFakeDocumentAPI() *fakeDocumentAPI {
	return &fakeDocumentAPI{
		sequences: make(map[domain.ID][]domain.Document),
		getErr:    make(map[domain.ID]error),
		gets:      make(map[domain.ID]int),
		moved:     make(map[domain.ID]domain.ID),
	}
}

// script sets the statuses GetDocument returns for id, one per call.
// The last status repeats.
func (f *fakeDocumentAPI) script(id domain.ID, statuses ...domain.DocumentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]domain.Document, len(statuses))
	for i, st := range statuses {
		docs[i] = domain.Document{ID: id, Name: string(id), Status: st}
	}
	f.sequences[id] = docs
}

func (f *fakeDocumentAPI) UploadDocument(
	_ context.Context,
	req domain.UploadRequest,
	onProgress domain.UploadProgressFunc,
) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.nextID++
	id := domain.ID(fmt.Sprintf("doc-%d", f.nextID))
	f.uploaded = append(f.uploaded, req.Name)
	if onProgress != nil {
		onProgress(100)
	}
	return &domain.Document{ID: id, Name: req.Name, Status: domain.StatusUploaded}, nil
}

func (f *fakeDocumentAPI) ListDocuments(_ context.Context, _ domain.DocumentFilter) ([]domain.Document, error) {
	return nil, nil
}

func (f *fakeDocumentAPI) GetDocument(_ context.Context, id domain.ID) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets[id]++
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	seq, ok := f.sequences[id]
	if !ok || len(seq) == 0 {
		return nil, &domain.APIError{StatusCode: 404, Detail: "Document not found"}
	}
	doc := seq[0]
	if len(seq) > 1 {
		f.sequences[id] = seq[1:]
	}
	return &doc, nil
}

func (f *fakeDocumentAPI) DeleteDocument(_ context.Context, id domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocumentAPI) MoveDocument(_ context.Context, id, storeID domain.ID) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moved[id] = storeID
	return &domain.Document{ID: id, RagStoreID: storeID, Status: domain.StatusCompleted}, nil
}

func (f *fakeDocumentAPI) getCount(id domain.ID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets[id]
}

type fakeStoreAPI struct {
	mu      sync.Mutex
	stores  []domain.RagStore
	granted []domain.StorePermission
	revoked []domain.ID
}

var _ driven.StoreAPI = (*fakeStoreAPI)(nil)

func (f *fakeStoreAPI) ListStores(_ context.Context) ([]domain.RagStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RagStore(nil), f.stores...), nil
}

func (f *fakeStoreAPI) GetStore(_ context.Context, id domain.ID) (*domain.RagStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.stores {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, &domain.APIError{StatusCode: 404, Detail: "Store not found"}
}

func (f *fakeStoreAPI) CreateStore(_ context.Context, in domain.StoreInput) (*domain.RagStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := domain.RagStore{
		ID:           domain.ID(fmt.Sprintf("%d", len(f.stores)+1)),
		Name:         in.Name,
		DisplayName:  in.DisplayName,
		RagStoreName: "ragStores/" + in.Name,
	}
	f.stores = append(f.stores, st)
	return &st, nil
}

func (f *fakeStoreAPI) UpdateStore(_ context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error) {
	return &domain.RagStore{ID: id, Name: in.Name, DisplayName: in.DisplayName}, nil
}

func (f *fakeStoreAPI) DeleteStore(_ context.Context, _ domain.ID) error { return nil }

func (f *fakeStoreAPI) ListPermissions(_ context.Context, _ domain.ID) ([]domain.StorePermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StorePermission(nil), f.granted...), nil
}

func (f *fakeStoreAPI) GrantPermission(
	_ context.Context,
	_ domain.ID,
	perm domain.StorePermission,
) (*domain.StorePermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = append(f.granted, perm)
	return &perm, nil
}

func (f *fakeStoreAPI) RevokePermission(_ context.Context, _, userID domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeChatAPI struct {
	mu            sync.Mutex
	sessions      map[domain.ID]domain.ChatSession
	history       map[domain.ID][]domain.HistoryMessage
	insights      *domain.ChatInsights
	insightsErr   error
	messagesErr   error
	createCalls   int
	deleted       []domain.ID
	stream        func(h driven.StreamHandlers) error
	streamed      []string
	queryResp     *domain.QueryResponse
	queryErr      error
	getSessionErr error
	nextID        int
}

var _ driven.ChatAPI = (*fakeChatAPI)(nil)

func newFakeChatAPI() *fakeChatAPI {
	return &fakeChatAPI{
		sessions: make(map[domain.ID]domain.ChatSession),
		history:  make(map[domain.ID][]domain.HistoryMessage),
	}
}

func (f *fakeChatAPI) CreateSession(_ context.Context, ragStoreName string) (*domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.nextID++
	s := domain.ChatSession{ID: domain.ID(fmt.Sprintf("session-%d", f.nextID)), RagStoreName: ragStoreName}
	f.sessions[s.ID] = s
	return &s, nil
}

func (f *fakeChatAPI) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ChatSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeChatAPI) GetSession(_ context.Context, id domain.ID) (*domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, &domain.APIError{StatusCode: 404, Detail: "Session not found"}
	}
	return &s, nil
}

func (f *fakeChatAPI) GetMessages(_ context.Context, id domain.ID) ([]domain.HistoryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	return f.history[id], nil
}

func (f *fakeChatAPI) Query(_ context.Context, _ domain.ID, _ string) (*domain.QueryResponse, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	resp := *f.queryResp
	return &resp, nil
}

func (f *fakeChatAPI) QueryStream(_ context.Context, _ domain.ID, message string, h driven.StreamHandlers) error {
	f.mu.Lock()
	f.streamed = append(f.streamed, message)
	stream := f.stream
	f.mu.Unlock()
	if stream == nil {
		return nil
	}
	return stream(h)
}

func (f *fakeChatAPI) DeleteSession(_ context.Context, id domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.sessions, id)
	return nil
}

func (f *fakeChatAPI) GetInsights(_ context.Context, _ domain.ID) (*domain.ChatInsights, error) {
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	return f.insights, nil
}

func (f *fakeChatAPI) deletedIDs() []domain.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ID(nil), f.deleted...)
}

type fakeSettingsAPI struct {
	general    domain.GeneralSettings
	generalErr error
	prompt     string
}

var _ driven.SettingsAPI = (*fakeSettingsAPI)(nil)

func (f *fakeSettingsAPI) GetSystemPrompt(_ context.Context) (*domain.SystemPrompt, error) {
	return &domain.SystemPrompt{Prompt: f.prompt}, nil
}

func (f *fakeSettingsAPI) UpdateSystemPrompt(_ context.Context, prompt string) (*domain.SystemPrompt, error) {
	f.prompt = prompt
	return &domain.SystemPrompt{Prompt: prompt}, nil
}

func (f *fakeSettingsAPI) ResetSystemPrompt(_ context.Context) (*domain.SystemPrompt, error) {
	f.prompt = "default"
	return &domain.SystemPrompt{Prompt: f.prompt}, nil
}

func (f *fakeSettingsAPI) GetGeneralSettings(_ context.Context) (domain.GeneralSettings, error) {
	if f.generalErr != nil {
		return nil, f.generalErr
	}
	return f.general, nil
}

func (f *fakeSettingsAPI) UpdateGeneralSettings(
	_ context.Context,
	settings domain.GeneralSettings,
) (domain.GeneralSettings, error) {
	if f.general == nil {
		f.general = domain.GeneralSettings{}
	}
	for k, v := range settings {
		f.general[k] = v
	}
	return f.general, nil
}

func (f *fakeSettingsAPI) ResetGeneralSettings(_ context.Context) (domain.GeneralSettings, error) {
	f.general = domain.GeneralSettings{}
	return f.general, nil
}

type fakeAnalyticsAPI struct {
	mu     sync.Mutex
	events []domain.TrackedEvent
	err    error
	limits []int
}

var _ driven.AnalyticsAPI = (*fakeAnalyticsAPI)(nil)

func (f *fakeAnalyticsAPI) GetDashboard(_ context.Context) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{TotalDocuments: 3}, nil
}

func (f *fakeAnalyticsAPI) GetStats(_ context.Context) (domain.UsageStats, error) {
	return domain.UsageStats{"queries": 5}, nil
}

func (f *fakeAnalyticsAPI) GetActivity(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return nil, nil
}

func (f *fakeAnalyticsAPI) GetTopQueries(_ context.Context, limit int) ([]domain.QueryStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return nil, nil
}

func (f *fakeAnalyticsAPI) TrackEvent(_ context.Context, event domain.TrackedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeAnalyticsAPI) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventType
	}
	return out
}
