package storage

import (
	"context"
	"database/sql"
	"errors"
)

func (s *Store) GetTag(ctx context.Context, name string) (Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, contents FROM tag WHERE name = ? LIMIT 1`, name)

	var tag Tag
	if err := row.Scan(&tag.Name, &tag.Contents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, ErrTagNotFound
		}
		return Tag{}, err
	}
	return tag, nil
}

func (s *Store) SetTag(ctx context.Context, name, contents string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag (name, contents) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET contents = excluded.contents
	`, name, contents)
	return err
}

func (s *Store) DeleteTag(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tag WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTagNotFound
	}
	return nil
}
