package version

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbenjam1n/eldesc/internal/catalog"
	"github.com/sbenjam1n/eldesc/internal/mapping"
	"github.com/sbenjam1n/eldesc/internal/template"
)

// Version is one proposed or approved description template for an element.
type Version struct {
	ID        int64
	ElementID int64
	Template  string
	State     State
	Active    bool
	Number    int
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approval is an immutable audit record of one state transition.
type Approval struct {
	ID         int64
	VersionID  int64
	From       State
	To         State
	ApprovedBy string
	Comments   string
	CreatedAt  time.Time
}

// ValidationError reports a template rejected before persistence.
type ValidationError struct {
	MissingRequired       []string
	UndefinedPlaceholders []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingRequired) > 0 {
		parts = append(parts, "missing required variables: "+strings.Join(e.MissingRequired, ", "))
	}
	if len(e.UndefinedPlaceholders) > 0 {
		parts = append(parts, "undefined placeholders: "+strings.Join(e.UndefinedPlaceholders, ", "))
	}
	return "template validation failed: " + strings.Join(parts, "; ")
}

// ProposalResult is a created draft version plus its mapping report.
// Unmatched placeholders are a warning, not a failure.
type ProposalResult struct {
	Version   *Version
	Bindings  []mapping.Binding
	Unmatched []string
}

// Store persists description versions and drives the approval pipeline.
type Store struct {
	db       *pgxpool.Pool
	catalog  *catalog.Store
	synonyms mapping.SynonymTable
}

// NewStore creates a Store. The synonym table feeds placeholder binding
// at proposal time.
func NewStore(db *pgxpool.Pool, synonyms mapping.SynonymTable) *Store {
	return &Store{db: db, catalog: catalog.NewStore(db), synonyms: synonyms}
}

// CreateProposal validates a template, allocates the next version number
// for the element, and persists the draft with its placeholder mappings
// in one transaction. Concurrent proposals for the same element serialize
// on a per-element advisory lock.
func (s *Store) CreateProposal(ctx context.Context, elementID int64, tmpl, author string) (*ProposalResult, error) {
	vars, err := s.catalog.Variables(ctx, elementID)
	if err != nil {
		return nil, err
	}

	check := template.Validate(vars, tmpl)
	if !check.IsValid {
		return nil, &ValidationError{
			MissingRequired:       check.MissingRequired,
			UndefinedPlaceholders: check.UndefinedPlaceholders,
		}
	}

	bind := mapping.Bind(template.Placeholders(tmpl), vars, s.synonyms)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", elementID); err != nil {
		return nil, fmt.Errorf("lock element %d: %w", elementID, err)
	}

	v := &Version{ElementID: elementID, Template: tmpl, State: StateDraft, CreatedBy: author}
	err = tx.QueryRow(ctx, `
		INSERT INTO description_versions (element_id, description_template, state, is_active, version_number, created_by)
		SELECT $1, $2, $3, FALSE, COALESCE(MAX(version_number), 0) + 1, NULLIF($4, '')
		FROM description_versions WHERE element_id = $1
		RETURNING version_id, version_number, created_at, updated_at
	`, elementID, tmpl, string(StateDraft), author).Scan(&v.ID, &v.Number, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	for _, b := range bind.Bindings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO template_variable_mappings (version_id, variable_id, placeholder, position)
			VALUES ($1, $2, $3, $4)
		`, v.ID, b.VariableID, b.Placeholder, b.Position); err != nil {
			return nil, fmt.Errorf("insert mapping %s: %w", b.Placeholder, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ProposalResult{Version: v, Bindings: bind.Bindings, Unmatched: bind.Unmatched}, nil
}

// Approve advances a version one step. On the step into the active state
// the element's previous active version is deactivated in the same
// transaction. The state is read before the transaction and re-read under
// the row lock: of two racing calls the first writer wins, and the loser
// finds a changed state and gets a not-in-expected-state failure rather
// than silently applying a second transition.
func (s *Store) Approve(ctx context.Context, versionID int64, actor, comment string) (TransitionResult, error) {
	var expected State
	err := s.db.QueryRow(ctx, `
		SELECT state FROM description_versions WHERE version_id = $1
	`, versionID).Scan(&expected)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("fetch version %d: %w", versionID, err)
	}

	next, ok := NextApproveState(expected)
	if !ok {
		return transitionFailure(expected, "approve"), nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return TransitionResult{}, err
	}
	defer tx.Rollback(ctx)

	var elementID int64
	var current State
	err = tx.QueryRow(ctx, `
		SELECT element_id, state FROM description_versions
		WHERE version_id = $1 FOR UPDATE
	`, versionID).Scan(&elementID, &current)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("fetch version %d: %w", versionID, err)
	}
	if current != expected {
		return staleStateFailure(expected, current, "approve"), nil
	}

	if next == StateActive {
		if _, err := tx.Exec(ctx, `
			UPDATE description_versions SET is_active = FALSE, updated_at = NOW()
			WHERE element_id = $1 AND is_active
		`, elementID); err != nil {
			return TransitionResult{}, fmt.Errorf("deactivate previous version: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE description_versions SET state = $1, is_active = TRUE, updated_at = NOW()
			WHERE version_id = $2
		`, string(next), versionID); err != nil {
			return TransitionResult{}, fmt.Errorf("activate version: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx, `
			UPDATE description_versions SET state = $1, updated_at = NOW()
			WHERE version_id = $2
		`, string(next), versionID); err != nil {
			return TransitionResult{}, fmt.Errorf("advance version: %w", err)
		}
	}

	if err := s.recordApproval(ctx, tx, versionID, current, next, actor, comment); err != nil {
		return TransitionResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Success:  true,
		Message:  fmt.Sprintf("version %d advanced %s -> %s", versionID, current.Label(), next.Label()),
		NewState: next,
	}, nil
}

// Reject moves a version to the terminal rejected state. Active and
// already-rejected versions cannot be rejected. Races with a concurrent
// approve are resolved like Approve: the version must still be in the
// state the caller saw, or the reject fails structurally.
func (s *Store) Reject(ctx context.Context, versionID int64, actor, reason string) (TransitionResult, error) {
	var expected State
	err := s.db.QueryRow(ctx, `
		SELECT state FROM description_versions WHERE version_id = $1
	`, versionID).Scan(&expected)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("fetch version %d: %w", versionID, err)
	}

	if !CanReject(expected) {
		return transitionFailure(expected, "reject"), nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return TransitionResult{}, err
	}
	defer tx.Rollback(ctx)

	var current State
	err = tx.QueryRow(ctx, `
		SELECT state FROM description_versions WHERE version_id = $1 FOR UPDATE
	`, versionID).Scan(&current)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("fetch version %d: %w", versionID, err)
	}
	if current != expected {
		return staleStateFailure(expected, current, "reject"), nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE description_versions SET state = $1, updated_at = NOW()
		WHERE version_id = $2
	`, string(StateRejected), versionID); err != nil {
		return TransitionResult{}, fmt.Errorf("reject version: %w", err)
	}

	if err := s.recordApproval(ctx, tx, versionID, current, StateRejected, actor, reason); err != nil {
		return TransitionResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Success:  true,
		Message:  fmt.Sprintf("version %d rejected from %s", versionID, current.Label()),
		NewState: StateRejected,
	}, nil
}

func (s *Store) recordApproval(ctx context.Context, tx pgx.Tx, versionID int64, from, to State, actor, comment string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO approvals (version_id, from_state, to_state, approved_by, comments)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, versionID, string(from), string(to), actor, comment)
	if err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	return nil
}

// Version fetches one version by id.
func (s *Store) Version(ctx context.Context, versionID int64) (*Version, error) {
	var v Version
	err := s.db.QueryRow(ctx, versionSelect+`WHERE version_id = $1`, versionID).
		Scan(&v.ID, &v.ElementID, &v.Template, &v.State, &v.Active, &v.Number, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch version %d: %w", versionID, err)
	}
	return &v, nil
}

// ActiveVersion returns the element's single active version, or nil.
func (s *Store) ActiveVersion(ctx context.Context, elementID int64) (*Version, error) {
	rows, err := s.db.Query(ctx, versionSelect+`WHERE element_id = $1 AND is_active`, elementID)
	if err != nil {
		return nil, fmt.Errorf("fetch active version: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var v Version
	if err := rows.Scan(&v.ID, &v.ElementID, &v.Template, &v.State, &v.Active, &v.Number, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVersions returns an element's versions, newest first.
func (s *Store) ListVersions(ctx context.Context, elementID int64) ([]Version, error) {
	rows, err := s.db.Query(ctx, versionSelect+`WHERE element_id = $1 ORDER BY version_number DESC`, elementID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()
	return scanVersions(rows)
}

// PendingProposals returns all versions still in the review pipeline.
func (s *Store) PendingProposals(ctx context.Context) ([]Version, error) {
	rows, err := s.db.Query(ctx, versionSelect+`
		WHERE state IN ('S0', 'S1', 'S2') ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending proposals: %w", err)
	}
	defer rows.Close()
	return scanVersions(rows)
}

// Approvals returns a version's audit trail in order.
func (s *Store) Approvals(ctx context.Context, versionID int64) ([]Approval, error) {
	rows, err := s.db.Query(ctx, `
		SELECT approval_id, version_id, from_state, to_state, approved_by, COALESCE(comments, ''), created_at
		FROM approvals WHERE version_id = $1 ORDER BY approval_id
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.VersionID, &a.From, &a.To, &a.ApprovedBy, &a.Comments, &a.CreatedAt); err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// Mappings returns a version's placeholder bindings in position order.
func (s *Store) Mappings(ctx context.Context, versionID int64) ([]mapping.Binding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.placeholder, m.variable_id, v.variable_name, m.position
		FROM template_variable_mappings m
		JOIN element_variables v ON v.variable_id = m.variable_id
		WHERE m.version_id = $1
		ORDER BY m.position
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var binds []mapping.Binding
	for rows.Next() {
		var b mapping.Binding
		if err := rows.Scan(&b.Placeholder, &b.VariableID, &b.VariableName, &b.Position); err != nil {
			return nil, err
		}
		binds = append(binds, b)
	}
	return binds, rows.Err()
}

const versionSelect = `
	SELECT version_id, element_id, description_template, state, is_active,
	       version_number, COALESCE(created_by, ''), created_at, updated_at
	FROM description_versions
`

func scanVersions(rows pgx.Rows) ([]Version, error) {
	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.ElementID, &v.Template, &v.State, &v.Active, &v.Number, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
