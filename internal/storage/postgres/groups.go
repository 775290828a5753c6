package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

const groupColumns = `id, name, description, created_by, created_at`

// CreateGroup persists a new group and its members.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*Store)
		if _, err := st.q.Exec(ctx,
			`insert into groups (`+groupColumns+`) values ($1, $2, $3, $4, $5)`,
			group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return st.insertMembers(ctx, group)
	})
}

func (s *Store) insertMembers(ctx context.Context, group *models.Group) error {
	batch := &pgx.Batch{}
	for i, m := range group.Members {
		joined := m.JoinedAt
		if joined == 0 {
			joined = group.CreatedAt
		}
		batch.Queue(
			`insert into group_members (group_id, user_id, role, joined_at, position) values ($1, $2, $3, $4, $5)`,
			group.ID, m.UserID, string(m.Role), joined, i,
		)
	}
	return s.sendBatch(ctx, batch, "failed to insert group member")
}

// sendBatch runs every queued statement and reports the first failure.
func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, msg string) error {
	if batch.Len() == 0 {
		return nil
	}
	br := s.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("%s: %w", msg, err)
		}
	}
	return br.Close()
}

// GetGroup retrieves a group with its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	g := &models.Group{}
	err := s.q.QueryRow(ctx, `select `+groupColumns+` from groups where id = $1`, groupID).
		Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("Group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if err := s.loadMembers(ctx, []*models.Group{g}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) loadMembers(ctx context.Context, groups []*models.Group) error {
	if len(groups) == 0 {
		return nil
	}
	byID := make(map[string]*models.Group, len(groups))
	ids := make([]string, len(groups))
	for i, g := range groups {
		byID[g.ID] = g
		ids[i] = g.ID
	}

	rows, err := s.q.Query(ctx,
		`select group_id, user_id, role, joined_at from group_members
		 where group_id = any($1) order by group_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, role string
		var m models.Member
		if err := rows.Scan(&groupID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Role = models.Role(role)
		byID[groupID].Members = append(byID[groupID].Members, m)
	}
	return rows.Err()
}

// ListGroupsForUser returns every group the user belongs to, newest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.q.Query(ctx,
		`select g.id, g.name, g.description, g.created_by, g.created_at
		 from groups g join group_members gm on gm.group_id = g.id
		 where gm.user_id = $1
		 order by g.created_at desc, g.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	if err := s.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateGroup replaces a group's details and membership.
func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	return s.InTx(ctx, func(tx storage.Store) error {
		st := tx.(*Store)
		tag, err := st.q.Exec(ctx,
			`update groups set name = $1, description = $2 where id = $3`,
			group.Name, group.Description, group.ID)
		if err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return errs.NotFound("Group not found")
		}
		if _, err := st.q.Exec(ctx, `delete from group_members where group_id = $1`, group.ID); err != nil {
			return fmt.Errorf("failed to clear group members: %w", err)
		}
		return st.insertMembers(ctx, group)
	})
}

// DeleteGroup removes a group. Members are removed by cascade.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := s.q.Exec(ctx, `delete from groups where id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Consistency("group %s was already deleted", groupID)
	}
	return nil
}
