// api/dao/task_dao.go
package dao

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	"github.com/taskhive/taskhive/api/model"
)

// TaskDAO exposes the task relations the engine consumes: owning project,
// creator, and assignees.
type TaskDAO struct {
	Driver neo4j.Driver
}

func NewTaskDAO(driver neo4j.Driver) *TaskDAO {
	return &TaskDAO{Driver: driver}
}

func (dao *TaskDAO) GetTask(ctx context.Context, taskID string) (*model.TaskInfo, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:TASK {id: $id})
        OPTIONAL MATCH (t)-[:BELONGS_TO]->(p:PROJECT)
        OPTIONAL MATCH (u:USER)-[:ASSIGNED_TO_TASK]->(t)
        RETURN t.status AS status,
               t.priority AS priority,
               t.creatorId AS creatorId,
               p.id AS projectId,
               collect(DISTINCT u.id) AS assigneeIds
        `
		records, err := transaction.Run(query, map[string]interface{}{"id": taskID})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}
		if !records.Next() {
			return nil, taskhive_errors.ErrTaskNotFound
		}
		record := records.Record()

		task := &model.TaskInfo{ID: taskID}
		if v, ok := record.Get("status"); ok && v != nil {
			task.Status, _ = v.(string)
		}
		if v, ok := record.Get("priority"); ok && v != nil {
			task.Priority, _ = v.(string)
		}
		if v, ok := record.Get("creatorId"); ok && v != nil {
			task.CreatorID, _ = v.(string)
		}
		if v, ok := record.Get("projectId"); ok && v != nil {
			task.ProjectID, _ = v.(string)
		}
		if v, ok := record.Get("assigneeIds"); ok {
			task.AssigneeIDs = toStringSlice(v)
		}
		return task, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.TaskInfo), nil
}

func (dao *TaskDAO) GetTaskProject(ctx context.Context, taskID string) (string, error) {
	task, err := dao.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	return task.ProjectID, nil
}

func (dao *TaskDAO) GetTaskAssignees(ctx context.Context, taskID string) ([]string, error) {
	task, err := dao.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task.AssigneeIDs, nil
}
