package main

import (
	"context"

	"github.com/openisle/backend/internal/domain/notification/event"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

// logEmailSender stands in until an SMTP provider is configured.
type logEmailSender struct{}

func newLogEmailSender() *logEmailSender {
	return &logEmailSender{}
}

func (s *logEmailSender) Send(ctx context.Context, to entity.User, subject, body string) error {
	xcontext.Logger(ctx).Infof("Email to %s: %s", to.Email, subject)
	return nil
}

// logPushSender stands in until a websocket proxy is wired.
type logPushSender struct{}

func newLogPushSender() *logPushSender {
	return &logPushSender{}
}

func (s *logPushSender) Push(ctx context.Context, userID string, req *event.EventRequest) error {
	xcontext.Logger(ctx).Debugf("Push %s to %s", req.Op, userID)
	return nil
}

// logImageReleaser stands in until an object storage backend is wired.
type logImageReleaser struct{}

func newLogImageReleaser() *logImageReleaser {
	return &logImageReleaser{}
}

func (s *logImageReleaser) Release(ctx context.Context, content string) error {
	xcontext.Logger(ctx).Debugf("Release image references of %d content bytes", len(content))
	return nil
}
