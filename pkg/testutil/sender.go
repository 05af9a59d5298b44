package testutil

import (
	"context"
	"sync"

	"github.com/openisle/backend/internal/domain/notification/event"
	"github.com/openisle/backend/internal/entity"
)

type SentEmail struct {
	To      entity.User
	Subject string
	Body    string
}

type MockEmailSender struct {
	mutex sync.Mutex
	Sent  []SentEmail

	SendFunc func(ctx context.Context, to entity.User, subject, body string) error
}

func (m *MockEmailSender) Send(ctx context.Context, to entity.User, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type PushedEvent struct {
	UserID  string
	Request *event.EventRequest
}

type MockPushSender struct {
	mutex  sync.Mutex
	Pushed []PushedEvent

	PushFunc func(ctx context.Context, userID string, req *event.EventRequest) error
}

func (m *MockPushSender) Push(ctx context.Context, userID string, req *event.EventRequest) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, userID, req)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Pushed = append(m.Pushed, PushedEvent{UserID: userID, Request: req})
	return nil
}

type MockImageReleaser struct {
	mutex    sync.Mutex
	Released []string

	ReleaseFunc func(ctx context.Context, content string) error
}

func (m *MockImageReleaser) Release(ctx context.Context, content string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, content)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Released = append(m.Released, content)
	return nil
}
