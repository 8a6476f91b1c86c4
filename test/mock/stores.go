// test/mock/stores.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// MockSubjectStore is a mock implementation of engine.SubjectStore
type MockSubjectStore struct {
	mock.Mock
}

func (m *MockSubjectStore) GetSubject(ctx context.Context, userID string) (*pdp_model.Subject, error) {
	args := m.Called(ctx, userID)
	subject, _ := args.Get(0).(*pdp_model.Subject)
	return subject, args.Error(1)
}

// MockProjectStore is a mock implementation of engine.ProjectStore
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) GetProject(ctx context.Context, projectID string) (*model.ProjectInfo, error) {
	args := m.Called(ctx, projectID)
	project, _ := args.Get(0).(*model.ProjectInfo)
	return project, args.Error(1)
}

func (m *MockProjectStore) GetProjectManager(ctx context.Context, projectID string) (string, error) {
	args := m.Called(ctx, projectID)
	return args.String(0), args.Error(1)
}

func (m *MockProjectStore) IsProjectMember(ctx context.Context, userID, projectID string) (bool, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectStore) GetProjectTeams(ctx context.Context, projectID string) ([]string, error) {
	args := m.Called(ctx, projectID)
	teams, _ := args.Get(0).([]string)
	return teams, args.Error(1)
}

// MockTaskStore is a mock implementation of engine.TaskStore
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) GetTask(ctx context.Context, taskID string) (*model.TaskInfo, error) {
	args := m.Called(ctx, taskID)
	task, _ := args.Get(0).(*model.TaskInfo)
	return task, args.Error(1)
}

func (m *MockTaskStore) GetTaskProject(ctx context.Context, taskID string) (string, error) {
	args := m.Called(ctx, taskID)
	return args.String(0), args.Error(1)
}

func (m *MockTaskStore) GetTaskAssignees(ctx context.Context, taskID string) ([]string, error) {
	args := m.Called(ctx, taskID)
	assignees, _ := args.Get(0).([]string)
	return assignees, args.Error(1)
}

// MockPolicyStore is a mock implementation of engine.PolicyStore
type MockPolicyStore struct {
	mock.Mock
}

func (m *MockPolicyStore) GetLiveUserPolicies(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockPolicyStore) GetLiveResourcePolicies(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]string, error) {
	args := m.Called(ctx, resourceType, resourceID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockPolicyStore) GetPolicyRules(ctx context.Context, policyID string) ([]model.Rule, error) {
	args := m.Called(ctx, policyID)
	rules, _ := args.Get(0).([]model.Rule)
	return rules, args.Error(1)
}
