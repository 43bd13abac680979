package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

// mockLogger records messages so tests can assert on them.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func newMockLogger() *mockLogger {
	return &mockLogger{messages: make([]string, 0)}
}

func (m *mockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *mockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *mockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }
func (m *mockLogger) Fatal(msg string, args ...any) { m.log("FATAL", msg, args...) }

func (m *mockLogger) log(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (m *mockLogger) contains(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := level + ": " + msg
	for _, line := range m.messages {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

type runnerFunc func(ctx context.Context, job *core.Job)

func (f runnerFunc) Run(ctx context.Context, job *core.Job) {
	f(ctx, job)
}

// fakeClient answers Transform through fn and records what it was sent.
type fakeClient struct {
	mu         sync.Mutex
	fn         func(ctx context.Context, image []byte, prompt string) (string, error)
	calls      int
	lastImage  []byte
	lastPrompt string
}

func replying(text string, err error) *fakeClient {
	return &fakeClient{fn: func(context.Context, []byte, string) (string, error) {
		return text, err
	}}
}

func (c *fakeClient) Transform(ctx context.Context, image []byte, prompt string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.lastImage = image
	c.lastPrompt = prompt
	c.mu.Unlock()
	return c.fn(ctx, image, prompt)
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakePreprocessor struct {
	out []byte
	err error
}

func (p *fakePreprocessor) Prepare([]byte) ([]byte, error) {
	return p.out, p.err
}

// erroringImageStore fails every read.
type erroringImageStore struct {
	core.ImageStore
}

func (erroringImageStore) GetImage(context.Context, int64) (*core.Image, error) {
	return nil, fmt.Errorf("connection refused")
}
