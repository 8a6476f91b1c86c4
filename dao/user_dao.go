// api/dao/user_dao.go
package dao

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive/api/db"
	taskhive_errors "github.com/taskhive/taskhive/api/errors"
	logger "github.com/taskhive/taskhive/api/logging"
	"github.com/taskhive/taskhive/api/model"
	pdp_model "github.com/taskhive/taskhive/api/pdp/model"
)

// UserDAO resolves subject snapshots. Snapshots are cached in Redis for a
// short TTL since every decision starts with one.
type UserDAO struct {
	Driver neo4j.Driver
}

func NewUserDAO(driver neo4j.Driver) *UserDAO {
	return &UserDAO{Driver: driver}
}

// GetSubject loads the per-request snapshot of a user: admin flag,
// department, team memberships with roles, and the enrichment attributes
// rules can match against (managed/member project ids, assigned task ids).
func (dao *UserDAO) GetSubject(ctx context.Context, userID string) (*pdp_model.Subject, error) {
	if cached, err := db.GetCachedSubject(ctx, userID); err == nil && cached != nil {
		return cached, nil
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:USER {id: $id})
        OPTIONAL MATCH (u)-[m:MEMBER_OF]->(t:TEAM)
        WITH u, collect({teamId: t.id, role: m.role}) AS teamRoles
        OPTIONAL MATCH (u)-[:MANAGES]->(mp:PROJECT)
        WITH u, teamRoles, collect(DISTINCT mp.id) AS managedProjectIds
        OPTIONAL MATCH (u)-[:MEMBER_OF_PROJECT]->(pp:PROJECT)
        WITH u, teamRoles, managedProjectIds, collect(DISTINCT pp.id) AS memberProjectIds
        OPTIONAL MATCH (u)-[:ASSIGNED_TO_TASK]->(tk:TASK)
        RETURN u.isAdmin AS isAdmin,
               u.departmentId AS departmentId,
               teamRoles,
               managedProjectIds,
               memberProjectIds,
               collect(DISTINCT tk.id) AS assignedTaskIds
        `
		records, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, taskhive_errors.ErrDatabaseOperation
		}
		if !records.Next() {
			return nil, taskhive_errors.ErrUserNotFound
		}
		record := records.Record()

		subject := &pdp_model.Subject{ID: userID}
		if v, ok := record.Get("isAdmin"); ok {
			subject.IsAdmin, _ = v.(bool)
		}
		if v, ok := record.Get("departmentId"); ok && v != nil {
			subject.DepartmentID, _ = v.(string)
		}
		if v, ok := record.Get("teamRoles"); ok {
			subject.TeamRoles = parseTeamRoles(v)
		}

		subject.Attributes = map[string]any{}
		for _, key := range []string{"managedProjectIds", "memberProjectIds", "assignedTaskIds"} {
			if v, ok := record.Get(key); ok {
				subject.Attributes[key] = toStringSlice(v)
			}
		}
		return subject, nil
	})
	if err != nil {
		logger.Debug("Failed to load subject",
			zap.String("userId", userID),
			zap.Error(err))
		return nil, err
	}

	subject := result.(*pdp_model.Subject)
	if err := db.CacheSubject(ctx, subject); err != nil {
		logger.Warn("Failed to cache subject", zap.String("userId", userID), zap.Error(err))
	}
	return subject, nil
}

func parseTeamRoles(v interface{}) []model.TeamRole {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var roles []model.TeamRole
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		teamID, _ := entry["teamId"].(string)
		role, _ := entry["role"].(string)
		if teamID == "" {
			continue // OPTIONAL MATCH with no membership yields a null row
		}
		roles = append(roles, model.TeamRole{TeamID: teamID, Role: role})
	}
	return roles
}
