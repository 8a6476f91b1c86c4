// test/mock/audit.go
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/taskhive/taskhive/api/audit"
)

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry audit.PermissionLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.PermissionLogEntry, error) {
	args := m.Called(ctx, from, to, userID, resourceID)
	logs, _ := args.Get(0).([]audit.PermissionLogEntry)
	return logs, args.Error(1)
}

// RecordingAuditService captures recorded entries in memory so tests can
// assert on the trail without a live sink.
type RecordingAuditService struct {
	mu      sync.Mutex
	Entries []audit.PermissionLogEntry
}

func (s *RecordingAuditService) Record(entry audit.PermissionLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, entry)
}

func (s *RecordingAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.PermissionLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.PermissionLogEntry(nil), s.Entries...), nil
}

func (s *RecordingAuditService) Close() {}

func (s *RecordingAuditService) Last() *audit.PermissionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Entries) == 0 {
		return nil
	}
	entry := s.Entries[len(s.Entries)-1]
	return &entry
}
