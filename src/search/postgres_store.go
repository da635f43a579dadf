package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edspark/coach/src/content"
)

// PostgresStore implements Store using Postgres + pgvector.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// CreateSchema ensures the pgvector extension and the content table exist.
func (ps *PostgresStore) CreateSchema(ctx context.Context, dim int) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	schema := fmt.Sprintf(`
                CREATE EXTENSION IF NOT EXISTS vector;
                CREATE TABLE IF NOT EXISTS lesson_content (
                        id         TEXT PRIMARY KEY,
                        content_id TEXT,
                        title      TEXT,
                        url        TEXT,
                        type       TEXT,
                        goal       TEXT,
                        age        TEXT,
                        level      TEXT,
                        skill      TEXT,
                        embedding  vector(%d)
                );
        `, dim)
	if _, err := ps.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Add(ctx context.Context, docs []Document) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = doc.Item.ID
		}
		_, err := ps.DB.Exec(ctx, `
                        INSERT INTO lesson_content (id, content_id, title, url, type, goal, age, level, skill, embedding)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector)
                        ON CONFLICT (id) DO NOTHING;
                `, id, doc.Item.ID, doc.Item.Title, doc.Item.URL, doc.Item.Type,
			doc.Item.Goal, doc.Item.Age, doc.Item.Level, doc.Item.Skill,
			vectorLiteral(doc.Embedding))
		if err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) Search(ctx context.Context, embedding []float32, limit int) ([]content.ScoredItem, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `
                SELECT content_id, title, url, type, goal, age, level, skill,
                       1 - (embedding <=> $1::vector) AS score
                FROM lesson_content
                ORDER BY embedding <=> $1::vector
                LIMIT $2;
        `, vectorLiteral(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []content.ScoredItem
	for rows.Next() {
		var rec content.ScoredItem
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.URL, &rec.Type,
			&rec.Goal, &rec.Age, &rec.Level, &rec.Skill, &rec.Score); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	if ps == nil || ps.DB == nil {
		return 0, nil
	}
	var n int
	if err := ps.DB.QueryRow(ctx, `SELECT count(*) FROM lesson_content;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (ps *PostgresStore) Close() {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
}

func vectorLiteral(embedding []float32) string {
	b, _ := json.Marshal(embedding)
	return "[" + strings.Trim(string(b), "[]") + "]"
}
