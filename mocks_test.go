package passwordless_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	passwordless "github.com/fagfilm/passwordless"
)

// MockNotifier implements passwordless.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg passwordless.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockIdentityStore implements passwordless.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) GetByEmail(ctx context.Context, email string) (*passwordless.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passwordless.User), args.Error(1)
}

func (m *MockIdentityStore) Register(ctx context.Context, user *passwordless.User) (*passwordless.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passwordless.User), args.Error(1)
}

func (m *MockIdentityStore) Confirm(ctx context.Context, id uuid.UUID, verifyEmail bool) error {
	args := m.Called(ctx, id, verifyEmail)
	return args.Error(0)
}

func (m *MockIdentityStore) AddToGroup(ctx context.Context, id uuid.UUID, group string) error {
	args := m.Called(ctx, id, group)
	return args.Error(0)
}

// MockRegistrar implements passwordless.AnonymousRegistrar
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterAnonymous(ctx context.Context, identity passwordless.AnonymizedIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

// recordingSink captures activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []passwordless.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event passwordless.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []passwordless.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]passwordless.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func (s *recordingSink) has(t passwordless.ActivityEventType) bool {
	for _, et := range s.types() {
		if et == t {
			return true
		}
	}
	return false
}

// captureLogger records formatted log lines per level.
type captureLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{lines: map[string][]string{}}
}

func (l *captureLogger) log(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *captureLogger) Debug(format string, args ...any) { l.log("debug", format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.log("info", format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.log("warn", format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.log("error", format, args...) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines[level])
}

func testConfig() passwordless.Config {
	return passwordless.Config{
		PseudonymSalt: "unit-test-salt",
	}.WithDefaults()
}
