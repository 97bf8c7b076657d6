package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/roastme/internal/app"
	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/models"
)

const testSecret = "test-secret"

// --- in-memory storage ---

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func (m *mockUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.IdentityRef] = &cp
	return nil
}

func (m *mockUserStore) DecrementTokens(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, models.ErrRecordNotFound
	}
	u.Tokens--
	return u.Tokens, nil
}

func (m *mockUserStore) SetHarshnessLevel(_ context.Context, id string, level models.HarshnessLevel) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	u.HarshnessLevel = level
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) Close() error { return nil }

func (m *mockUserStore) get(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

type mockStorageManager struct {
	users *mockUserStore
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{users: &mockUserStore{users: make(map[string]*models.User)}}
}

func (m *mockStorageManager) UserStore() interfaces.UserStore { return m.users }
func (m *mockStorageManager) Close() error                    { return nil }

func (m *mockStorageManager) addUser(id string, tokens int) {
	m.users.users[id] = models.NewUser(id, id+"@example.com", tokens, time.Now())
}

// --- fake model ---

type mockModel struct {
	mu     sync.Mutex
	result *models.GenerationResult
	err    error
	calls  []*models.GenerationRequest
}

func (m *mockModel) Generate(_ context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- harness ---

type testEnv struct {
	storage *mockStorageManager
	model   *mockModel
	app     *app.App
	handler http.Handler
}

// newTestEnv wires the real services over in-memory storage and a fake model.
// Pass withModel=false to simulate a missing API key.
func newTestEnv(t *testing.T, withModel bool) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, withModel, common.NewSilentLogger())
}

func newTestEnvWithLogger(t *testing.T, withModel bool, logger *common.Logger) *testEnv {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = testSecret

	env := &testEnv{
		storage: newMockStorageManager(),
		model:   &mockModel{result: &models.GenerationResult{Text: "You call that a bio?", FinishReason: "STOP"}},
	}

	var model interfaces.GenerativeClient
	if withModel {
		model = env.model
	}
	env.app = app.New(config, logger, env.storage, model)
	env.handler = NewServer(env.app).Handler()
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func bearerFor(t *testing.T, sub string) string {
	return "Bearer " + signToken(t, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	if filename != "" {
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	} else {
		h.Set("Content-Disposition", `form-data; name="`+field+`"`)
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
