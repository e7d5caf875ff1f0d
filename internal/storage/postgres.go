package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps tags in PostgreSQL. Each operation acquires its own
// pooled connection and releases it on every return path.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		for _, file := range files {
			content, err := migrations.ReadFile(path.Join("migrations", file))
			if err != nil {
				return err
			}
			if _, err := conn.Exec(ctx, string(content)); err != nil {
				if isIgnorableMigrationError(err) {
					continue
				}
				return fmt.Errorf("migration %s failed: %w", file, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) GetTag(ctx context.Context, name string) (Tag, error) {
	var tag Tag
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `SELECT name, contents FROM tag WHERE name = $1 LIMIT 1`, name).
			Scan(&tag.Name, &tag.Contents)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tag{}, ErrTagNotFound
		}
		return Tag{}, err
	}
	return tag, nil
}

func (s *PostgresStore) SetTag(ctx context.Context, name, contents string) error {
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO tag (name, contents) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET contents = EXCLUDED.contents
		`, name, contents)
		return err
	})
}

func (s *PostgresStore) DeleteTag(ctx context.Context, name string) error {
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		result, err := conn.Exec(ctx, `DELETE FROM tag WHERE name = $1`, name)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrTagNotFound
		}
		return nil
	})
}

func (s *PostgresStore) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}
