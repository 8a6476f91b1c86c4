// api/audit/service.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/taskhive/taskhive/api/logging"
)

// Service records authorization decisions best-effort. Record never blocks
// the decision path and never surfaces persistence failures to the caller.
type Service interface {
	Record(entry PermissionLogEntry)
	QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]PermissionLogEntry, error)
	Close()
}

type service struct {
	repo    Repository
	queue   chan PermissionLogEntry
	done    chan struct{}
	timeout time.Duration
}

// NewService starts the background writer. queueSize bounds the number of
// in-flight entries; when the queue is full new entries are dropped with a
// warning rather than delaying decisions.
func NewService(repo Repository, queueSize int) Service {
	if queueSize <= 0 {
		queueSize = 1024
	}
	s := &service{
		repo:    repo,
		queue:   make(chan PermissionLogEntry, queueSize),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	go s.run()
	return s
}

func (s *service) Record(entry PermissionLogEntry) {
	// A record missing its required identifiers would be unattributable;
	// skip it rather than write a malformed document.
	if entry.UserID == "" || entry.Action == "" || entry.ResourceType == "" {
		logger.Debug("Skipping audit entry with missing required fields",
			zap.String("userId", entry.UserID),
			zap.String("action", entry.Action),
			zap.String("resourceType", entry.ResourceType))
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	select {
	case s.queue <- entry:
	default:
		logger.Warn("Audit queue full, dropping entry",
			zap.String("userId", entry.UserID),
			zap.String("action", entry.Action))
	}
}

func (s *service) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]PermissionLogEntry, error) {
	return s.repo.QueryLogs(ctx, from, to, userID, resourceID)
}

// Close drains the queue and stops the background writer.
func (s *service) Close() {
	close(s.queue)
	<-s.done
}

func (s *service) run() {
	defer close(s.done)
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.repo.Append(ctx, entry); err != nil {
			logger.Error("Failed to persist audit entry",
				zap.String("userId", entry.UserID),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
		cancel()
	}
}
