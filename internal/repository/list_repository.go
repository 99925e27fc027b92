package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
)

// ListRepository manages persistence for contact lists and their membership.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	Update(ctx context.Context, list *domain.List) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.List, error)
	ListAccessible(ctx context.Context, identityID string) ([]domain.List, error)
	AddMember(ctx context.Context, listID, identityID string) error
}

type listRepository struct {
	db DB
}

// NewListRepository constructs repository.
func NewListRepository(db DB) ListRepository {
	return &listRepository{db: db}
}

const listSelect = `
        SELECT l.id, l.creator_id, l.name, l.created_at, l.updated_at,
               COALESCE(array_agg(lm.identity_id) FILTER (WHERE lm.identity_id IS NOT NULL), '{}')
        FROM lists l
        LEFT JOIN list_members lm ON lm.list_id = l.id`

// Create inserts the list and registers its creator as a member in one transaction.
func (r *listRepository) Create(ctx context.Context, list *domain.List) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO lists (creator_id, name)
            VALUES ($1,$2)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query, list.CreatorID, list.Name).
			Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO list_members (list_id, identity_id) VALUES ($1,$2)`, list.ID, list.CreatorID); err != nil {
			return err
		}
		list.MemberIDs = []string{list.CreatorID}
		return nil
	})
}

func (r *listRepository) Update(ctx context.Context, list *domain.List) error {
	const query = `
        UPDATE lists SET name=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query, list.Name, list.ID).Scan(&list.UpdatedAt)
}

// Delete removes the list; its contacts and memberships cascade.
func (r *listRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM lists WHERE id=$1`, id))
}

func (r *listRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	return scanList(r.db.QueryRow(ctx, listSelect+` WHERE l.id=$1 GROUP BY l.id`, id))
}

func (r *listRepository) ListAccessible(ctx context.Context, identityID string) ([]domain.List, error) {
	const filter = `
        WHERE l.creator_id=$1
           OR EXISTS (SELECT 1 FROM list_members m WHERE m.list_id = l.id AND m.identity_id=$1)
        GROUP BY l.id
        ORDER BY l.created_at`
	rows, err := r.db.Query(ctx, listSelect+filter, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *list)
	}
	return result, rows.Err()
}

func (r *listRepository) AddMember(ctx context.Context, listID, identityID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO list_members (list_id, identity_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		listID, identityID)
	return err
}

func scanList(row pgx.Row) (*domain.List, error) {
	var list domain.List
	if err := row.Scan(
		&list.ID,
		&list.CreatorID,
		&list.Name,
		&list.CreatedAt,
		&list.UpdatedAt,
		&list.MemberIDs,
	); err != nil {
		return nil, err
	}
	return &list, nil
}
