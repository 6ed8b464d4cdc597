package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// pgStore is the indexed alternative to the filesystem store. Same flat
// id namespace, same contract; selected via METADATA_BACKEND=postgres.
type pgStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a metadata store backed by the objects table.
func NewPostgresStore(db *sqlx.DB) MetadataStore {
	return &pgStore{db: db}
}

func (s *pgStore) Load(ctx context.Context, id string) (*Object, error) {
	var obj Object
	err := s.db.GetContext(ctx, &obj, `SELECT * FROM objects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading record: %w", err)
	}
	return &obj, nil
}

func (s *pgStore) Save(ctx context.Context, obj *Object) error {
	if obj.ID == "" {
		return errors.New("record has no id")
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO objects (
			id, name, password_hash, self_destruct, countdown, valid_until,
			created_at, accessed_times, accessed_at, removed_at, removed_because,
			size, content_type
		) VALUES (
			:id, :name, :password_hash, :self_destruct, :countdown, :valid_until,
			:created_at, :accessed_times, :accessed_at, :removed_at, :removed_because,
			:size, :content_type
		)
		ON CONFLICT (id) DO UPDATE SET
			countdown       = EXCLUDED.countdown,
			accessed_times  = EXCLUDED.accessed_times,
			accessed_at     = EXCLUDED.accessed_at,
			removed_at      = COALESCE(objects.removed_at, EXCLUDED.removed_at),
			removed_because = COALESCE(NULLIF(objects.removed_because, ''), EXCLUDED.removed_because)`,
		obj)
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM objects`); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return ids, nil
}

func (s *pgStore) Close() error {
	return nil
}
