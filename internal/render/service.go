package render

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbenjam1n/eldesc/internal/queue"
)

// Service renders instances against the database and maintains the
// rendered-description cache. The queue is optional; when present,
// staleness markers also push invalidation events for the renderer
// workers.
type Service struct {
	db    *pgxpool.Pool
	queue *queue.Queue
}

// NewService creates a Service. q may be nil for synchronous-only use.
func NewService(db *pgxpool.Pool, q *queue.Queue) *Service {
	return &Service{db: db, queue: q}
}

// RenderInstance renders one project element from its bound version's
// template, upserts the cached text with the staleness flag cleared, and
// returns the text.
func (s *Service) RenderInstance(ctx context.Context, projectElementID int64) (string, error) {
	var tmpl string
	var versionID, elementID int64
	err := s.db.QueryRow(ctx, `
		SELECT dv.description_template, dv.version_id, pe.element_id
		FROM project_elements pe
		JOIN description_versions dv ON dv.version_id = pe.description_version_id
		WHERE pe.project_element_id = $1
	`, projectElementID).Scan(&tmpl, &versionID, &elementID)
	if err != nil {
		return "", fmt.Errorf("load instance %d: %w", projectElementID, err)
	}

	binds, err := s.loadBindings(ctx, versionID)
	if err != nil {
		return "", err
	}
	values, err := s.loadValues(ctx, projectElementID)
	if err != nil {
		return "", err
	}
	defaults, err := s.loadDefaults(ctx, elementID)
	if err != nil {
		return "", err
	}

	text := Render(tmpl, binds, values, defaults)

	_, err = s.db.Exec(ctx, `
		INSERT INTO rendered_descriptions (project_element_id, rendered_text, is_stale, rendered_at)
		VALUES ($1, $2, FALSE, NOW())
		ON CONFLICT (project_element_id)
		DO UPDATE SET rendered_text = EXCLUDED.rendered_text, is_stale = FALSE, rendered_at = NOW()
	`, projectElementID, text)
	if err != nil {
		return "", fmt.Errorf("store rendered text: %w", err)
	}
	return text, nil
}

func (s *Service) loadBindings(ctx context.Context, versionID int64) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.placeholder, v.variable_name
		FROM template_variable_mappings m
		JOIN element_variables v ON v.variable_id = m.variable_id
		WHERE m.version_id = $1
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	defer rows.Close()

	binds := make(map[string]string)
	for rows.Next() {
		var placeholder, name string
		if err := rows.Scan(&placeholder, &name); err != nil {
			return nil, err
		}
		binds[placeholder] = name
	}
	return binds, rows.Err()
}

func (s *Service) loadValues(ctx context.Context, projectElementID int64) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.variable_name, pev.value
		FROM project_element_values pev
		JOIN element_variables v ON v.variable_id = pev.variable_id
		WHERE pev.project_element_id = $1
	`, projectElementID)
	if err != nil {
		return nil, fmt.Errorf("load instance values: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, rows.Err()
}

func (s *Service) loadDefaults(ctx context.Context, elementID int64) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT variable_name, default_value
		FROM element_variables
		WHERE element_id = $1 AND default_value IS NOT NULL
	`, elementID)
	if err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	defer rows.Close()

	defaults := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		defaults[name] = value
	}
	return defaults, rows.Err()
}

// MarkStale flags one instance's cached text as out of date and pushes
// an invalidation event.
func (s *Service) MarkStale(ctx context.Context, projectElementID int64, reason string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rendered_descriptions (project_element_id, is_stale)
		VALUES ($1, TRUE)
		ON CONFLICT (project_element_id) DO UPDATE SET is_stale = TRUE
	`, projectElementID)
	if err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}

	if s.queue != nil {
		if _, err := s.queue.PushInvalidation(ctx, projectElementID, reason); err != nil {
			return err
		}
	}
	return nil
}

// MarkStaleForVersion flags every instance bound to a version, used when
// an element's active template changes.
func (s *Service) MarkStaleForVersion(ctx context.Context, versionID int64, reason string) (int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT project_element_id FROM project_elements WHERE description_version_id = $1
	`, versionID)
	if err != nil {
		return 0, fmt.Errorf("list instances for version %d: %w", versionID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.MarkStale(ctx, id, reason); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Stale reports whether an instance's cached text is flagged stale. An
// instance never rendered counts as stale.
func (s *Service) Stale(ctx context.Context, projectElementID int64) (bool, error) {
	var stale bool
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT is_stale FROM rendered_descriptions WHERE project_element_id = $1),
			TRUE)
	`, projectElementID).Scan(&stale)
	if err != nil {
		return false, fmt.Errorf("check staleness: %w", err)
	}
	return stale, nil
}
