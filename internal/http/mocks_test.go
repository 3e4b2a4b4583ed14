package http

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/talha309/multiuser-ai-assistant/internal/domain"
	"github.com/talha309/multiuser-ai-assistant/internal/llm"
	"github.com/talha309/multiuser-ai-assistant/internal/search"
	"github.com/talha309/multiuser-ai-assistant/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

type mockThreadRepo struct {
	threads map[string]domain.Thread
}

func newMockThreadRepo() *mockThreadRepo {
	return &mockThreadRepo{threads: make(map[string]domain.Thread)}
}

func (m *mockThreadRepo) Create(_ context.Context, thread domain.Thread) error {
	m.threads[thread.ID] = thread
	return nil
}

func (m *mockThreadRepo) GetOwnedBy(_ context.Context, ownerID, threadID string) (domain.Thread, error) {
	thread, ok := m.threads[threadID]
	if !ok || thread.OwnerID != ownerID {
		return domain.Thread{}, pgx.ErrNoRows
	}
	return thread, nil
}

func (m *mockThreadRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Thread, error) {
	var out []domain.Thread
	for _, t := range m.threads {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockMessageRepo struct {
	messages []domain.Message
	err      error
}

func (m *mockMessageRepo) Append(_ context.Context, msg domain.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) ListByThreadID(_ context.Context, threadID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.ThreadID == threadID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type testEnv struct {
	router    *gin.Engine
	users     *mockUserRepo
	threads   *mockThreadRepo
	messages  *mockMessageRepo
	searcher  *search.MockClient
	generator *llm.MockClient
	authServ  *service.AuthService
}

func newTestEnv() *testEnv {
	return newTestEnvWithPinger(nil)
}

func newTestEnvWithPinger(pinger Pinger) *testEnv {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := newMockUserRepo()
	threads := newMockThreadRepo()
	messages := &mockMessageRepo{}
	searcher := &search.MockClient{Results: []search.Result{{Title: "A", URL: "u1"}}}
	generator := &llm.MockClient{Response: "assistant reply"}

	jwtSvc := service.NewJWTService("secret", 60*time.Minute)
	authServ := service.NewAuthService(logger, users, jwtSvc, service.NewLoginRateLimiter(time.Minute, 100))
	pipeline := service.NewConversationPipeline(logger, messages, searcher, generator)

	authH := NewAuthHandler(logger, authServ)
	chatH := NewChatHandler(logger, threads, messages, pipeline)
	router := NewRouter(logger, pinger, authServ, authH, chatH)

	return &testEnv{
		router:    router,
		users:     users,
		threads:   threads,
		messages:  messages,
		searcher:  searcher,
		generator: generator,
		authServ:  authServ,
	}
}

func (e *testEnv) signupAndLogin(email, password string) (domain.User, string, error) {
	user, err := e.authServ.Signup(context.Background(), email, password)
	if err != nil {
		return domain.User{}, "", err
	}
	token, err := e.authServ.Login(context.Background(), email, password)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

var errStoreDown = errors.New("store down")
