// api/audit/service_test.go
package audit_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/taskhive/taskhive/api/audit"
	logger "github.com/taskhive/taskhive/api/logging"
	test_mock "github.com/taskhive/taskhive/api/test/mock"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "authz-audit-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}

func validEntry() audit.PermissionLogEntry {
	return audit.PermissionLogEntry{
		UserID:       "u1",
		Action:       "read",
		ResourceType: "task",
		ResourceID:   "task-7",
		Allowed:      true,
		Reason:       "role permission",
	}
}

func TestService_RecordAppendsAsync(t *testing.T) {
	repo := new(test_mock.MockAuditRepository)
	appended := make(chan audit.PermissionLogEntry, 1)
	repo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		appended <- args.Get(1).(audit.PermissionLogEntry)
	}).Return(nil)

	svc := audit.NewService(repo, 8)
	defer svc.Close()

	svc.Record(validEntry())

	select {
	case entry := <-appended:
		assert.Equal(t, "u1", entry.UserID)
		assert.Equal(t, "read", entry.Action)
		assert.NotEmpty(t, entry.ID, "missing ids are filled in")
		assert.False(t, entry.Timestamp.IsZero(), "missing timestamps are filled in")
	case <-time.After(2 * time.Second):
		t.Fatal("entry was never persisted")
	}
}

func TestService_SkipsEntryMissingRequiredFields(t *testing.T) {
	repo := new(test_mock.MockAuditRepository)
	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := audit.NewService(repo, 8)

	entry := validEntry()
	entry.UserID = ""
	svc.Record(entry)

	entry = validEntry()
	entry.Action = ""
	svc.Record(entry)

	entry = validEntry()
	entry.ResourceType = ""
	svc.Record(entry)

	svc.Close()
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestService_AppendFailureIsSwallowed(t *testing.T) {
	repo := new(test_mock.MockAuditRepository)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("sink unavailable"))

	svc := audit.NewService(repo, 8)
	svc.Record(validEntry())
	svc.Record(validEntry())
	svc.Close()

	// Both entries were attempted; neither failure reached a caller.
	repo.AssertNumberOfCalls(t, "Append", 2)
}

func TestService_CloseDrainsQueue(t *testing.T) {
	repo := new(test_mock.MockAuditRepository)
	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := audit.NewService(repo, 64)
	for i := 0; i < 10; i++ {
		svc.Record(validEntry())
	}
	svc.Close()

	repo.AssertNumberOfCalls(t, "Append", 10)
}

func TestService_PreservesCallerIDAndTimestamp(t *testing.T) {
	repo := new(test_mock.MockAuditRepository)
	appended := make(chan audit.PermissionLogEntry, 1)
	repo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		appended <- args.Get(1).(audit.PermissionLogEntry)
	}).Return(nil)

	svc := audit.NewService(repo, 8)
	defer svc.Close()

	stamped := validEntry()
	stamped.ID = "fixed-id"
	stamped.Timestamp = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.Record(stamped)

	select {
	case entry := <-appended:
		assert.Equal(t, "fixed-id", entry.ID)
		assert.True(t, stamped.Timestamp.Equal(entry.Timestamp))
	case <-time.After(2 * time.Second):
		t.Fatal("entry was never persisted")
	}
}
