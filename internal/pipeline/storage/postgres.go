package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS styles (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL UNIQUE,
	description        TEXT NOT NULL DEFAULT '',
	point_cost         INTEGER NOT NULL DEFAULT 1,
	prompt_template    TEXT NOT NULL,
	example_before_url TEXT NOT NULL DEFAULT '',
	example_after_url  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS images (
	id              BIGSERIAL PRIMARY KEY,
	user_id         BIGINT NOT NULL,
	original_url    TEXT NOT NULL,
	transformed_url TEXT,
	style           TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	error_message   TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS images_user_id_idx ON images (user_id);
`

const imageColumns = `id, user_id, original_url, transformed_url, style, status, error_message, created_at, updated_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, conn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// EnsureSchema creates missing tables and inserts styles that are not yet in
// the catalog.
func (s *PostgresStore) EnsureSchema(ctx context.Context, styles []core.Style) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, style := range styles {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO styles (name, description, point_cost, prompt_template, example_before_url, example_after_url)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (name) DO NOTHING`,
			style.Name, style.Description, style.PointCost, style.PromptTemplate, style.ExampleBeforeURL, style.ExampleAfterURL,
		)
		if err != nil {
			return fmt.Errorf("failed to seed style %q: %w", style.Name, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateImage(ctx context.Context, image *core.Image) (*core.Image, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO images (user_id, original_url, style, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+imageColumns,
		image.UserID, image.OriginalURL, image.Style, string(core.ImageStatusPending),
	)
	created, err := scanImage(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetImage(ctx context.Context, id int64) (*core.Image, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id)
	image, err := scanImage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image %d: %w", id, err)
	}
	return image, nil
}

func (s *PostgresStore) ListImagesByUser(ctx context.Context, userID int64) ([]*core.Image, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM images WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*core.Image, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// UpdateImageStatus applies the transition in a single conditional UPDATE so
// concurrent writers cannot move an image out of a terminal state.
func (s *PostgresStore) UpdateImageStatus(ctx context.Context, id int64, status core.ImageStatus, transformedURL, errorMessage string) (*core.Image, error) {
	prev := core.PreviousStatuses(status)
	if len(prev) == 0 {
		return nil, core.ErrInvalidTransition
	}
	if err := core.ValidateStatusUpdate(prev[0], status, transformedURL, errorMessage); err != nil {
		return nil, err
	}

	var url, msg *string
	switch status {
	case core.ImageStatusCompleted:
		url = &transformedURL
	case core.ImageStatusFailed:
		msg = &errorMessage
	}

	prevNames := make([]string, len(prev))
	for i, p := range prev {
		prevNames[i] = string(p)
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE images
		 SET status = $2,
		     transformed_url = CASE WHEN $2 = 'processing' THEN transformed_url ELSE $3 END,
		     error_message = CASE WHEN $2 = 'processing' THEN error_message ELSE $4 END,
		     updated_at = now()
		 WHERE id = $1 AND status = ANY($5)
		 RETURNING `+imageColumns,
		id, string(status), url, msg, prevNames,
	)
	updated, err := scanImage(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update image %d: %w", id, err)
	}

	current, err := s.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	return nil, core.ErrInvalidTransition
}

func (s *PostgresStore) GetStyleByName(ctx context.Context, name string) (*core.Style, error) {
	var style core.Style
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, point_cost, prompt_template, example_before_url, example_after_url
		 FROM styles WHERE name = $1`, name,
	).Scan(&style.ID, &style.Name, &style.Description, &style.PointCost, &style.PromptTemplate, &style.ExampleBeforeURL, &style.ExampleAfterURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style %q: %w", name, err)
	}
	return &style, nil
}

func (s *PostgresStore) ListStyles(ctx context.Context) ([]*core.Style, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, point_cost, prompt_template, example_before_url, example_after_url
		 FROM styles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list styles: %w", err)
	}
	defer rows.Close()

	styles := make([]*core.Style, 0)
	for rows.Next() {
		var style core.Style
		if err := rows.Scan(&style.ID, &style.Name, &style.Description, &style.PointCost, &style.PromptTemplate, &style.ExampleBeforeURL, &style.ExampleAfterURL); err != nil {
			return nil, fmt.Errorf("failed to scan style: %w", err)
		}
		styles = append(styles, &style)
	}
	return styles, rows.Err()
}

func scanImage(row pgx.Row) (*core.Image, error) {
	var (
		image          core.Image
		status         string
		transformedURL *string
		errorMessage   *string
	)
	err := row.Scan(&image.ID, &image.UserID, &image.OriginalURL, &transformedURL, &image.Style,
		&status, &errorMessage, &image.CreatedAt, &image.UpdatedAt)
	if err != nil {
		return nil, err
	}
	image.Status = core.ImageStatus(status)
	if transformedURL != nil {
		image.TransformedURL = *transformedURL
	}
	if errorMessage != nil {
		image.ErrorMessage = *errorMessage
	}
	return &image, nil
}
