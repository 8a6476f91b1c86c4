// api/dao/project_dao.go
package dao

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	"github.com/taskhive/taskhive/api/model"
)

// ProjectDAO exposes the project relations the engine consumes: manager,
// direct members, and assigned teams.
type ProjectDAO struct {
	Driver neo4j.Driver
}

func NewProjectDAO(driver neo4j.Driver) *ProjectDAO {
	return &ProjectDAO{Driver: driver}
}

func (dao *ProjectDAO) GetProject(ctx context.Context, projectID string) (*model.ProjectInfo, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:PROJECT {id: $id})
        OPTIONAL MATCH (m:USER)-[:MANAGES]->(p)
        OPTIONAL MATCH (u:USER)-[:MEMBER_OF_PROJECT]->(p)
        OPTIONAL MATCH (t:TEAM)-[:ASSIGNED_TO]->(p)
        RETURN p.status AS status,
               m.id AS managerId,
               collect(DISTINCT u.id) AS memberIds,
               collect(DISTINCT t.id) AS teamIds
        `
		records, err := transaction.Run(query, map[string]interface{}{"id": projectID})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}
		if !records.Next() {
			return nil, taskhive_errors.ErrProjectNotFound
		}
		record := records.Record()

		project := &model.ProjectInfo{ID: projectID}
		if v, ok := record.Get("status"); ok && v != nil {
			project.Status, _ = v.(string)
		}
		if v, ok := record.Get("managerId"); ok && v != nil {
			project.ManagerID, _ = v.(string)
		}
		if v, ok := record.Get("memberIds"); ok {
			project.MemberIDs = toStringSlice(v)
		}
		if v, ok := record.Get("teamIds"); ok {
			project.TeamIDs = toStringSlice(v)
		}
		return project, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ProjectInfo), nil
}

func (dao *ProjectDAO) GetProjectManager(ctx context.Context, projectID string) (string, error) {
	project, err := dao.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return project.ManagerID, nil
}

func (dao *ProjectDAO) IsProjectMember(ctx context.Context, userID, projectID string) (bool, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:USER {id: $userId})-[:MEMBER_OF_PROJECT]->(p:PROJECT {id: $projectId})
        RETURN count(u) > 0 AS isMember
        `
		records, err := transaction.Run(query, map[string]interface{}{
			"userId":    userID,
			"projectId": projectID,
		})
		if err != nil {
			return false, taskhive_errors.ErrDatabaseOperation
		}
		if !records.Next() {
			return false, nil
		}
		v, _ := records.Record().Get("isMember")
		isMember, _ := v.(bool)
		return isMember, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (dao *ProjectDAO) GetProjectTeams(ctx context.Context, projectID string) ([]string, error) {
	project, err := dao.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.TeamIDs, nil
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
