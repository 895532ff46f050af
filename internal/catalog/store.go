package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides catalog persistence over PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store from a connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateElement inserts a new catalog element.
func (s *Store) CreateElement(ctx context.Context, code, name, category, createdBy string) (*Element, error) {
	var e Element
	err := s.db.QueryRow(ctx, `
		INSERT INTO elements (element_code, element_name, category, created_by)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		RETURNING element_id, element_code, element_name, COALESCE(category, ''), COALESCE(created_by, ''), created_at
	`, code, name, category, createdBy).Scan(&e.ID, &e.Code, &e.Name, &e.Category, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create element %s: %w", code, err)
	}
	return &e, nil
}

// ElementByCode looks up an element by its unique code.
func (s *Store) ElementByCode(ctx context.Context, code string) (*Element, error) {
	var e Element
	err := s.db.QueryRow(ctx, `
		SELECT element_id, element_code, element_name, COALESCE(category, ''), COALESCE(created_by, ''), created_at
		FROM elements WHERE element_code = $1
	`, code).Scan(&e.ID, &e.Code, &e.Name, &e.Category, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch element %s: %w", code, err)
	}
	return &e, nil
}

// ListElements returns all elements ordered by code.
func (s *Store) ListElements(ctx context.Context) ([]Element, error) {
	rows, err := s.db.Query(ctx, `
		SELECT element_id, element_code, element_name, COALESCE(category, ''), COALESCE(created_by, ''), created_at
		FROM elements ORDER BY element_code
	`)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	var elements []Element
	for rows.Next() {
		var e Element
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Category, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return elements, rows.Err()
}

// AddVariable inserts a variable on an element.
func (s *Store) AddVariable(ctx context.Context, v *Variable) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO element_variables
			(element_id, variable_name, variable_type, unit, default_value, is_required, display_order)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING variable_id
	`, v.ElementID, v.Name, v.Type.String(), v.Unit, v.DefaultValue, v.Required, v.DisplayOrder).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("add variable %s: %w", v.Name, err)
	}
	return nil
}

// Variables returns an element's variables with options, in display order.
func (s *Store) Variables(ctx context.Context, elementID int64) ([]Variable, error) {
	rows, err := s.db.Query(ctx, `
		SELECT variable_id, element_id, variable_name, variable_type,
		       COALESCE(unit, ''), COALESCE(default_value, ''), is_required, display_order
		FROM element_variables
		WHERE element_id = $1
		ORDER BY display_order, variable_name
	`, elementID)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	defer rows.Close()

	var vars []Variable
	for rows.Next() {
		var v Variable
		var typeStr string
		if err := rows.Scan(&v.ID, &v.ElementID, &v.Name, &typeStr, &v.Unit, &v.DefaultValue, &v.Required, &v.DisplayOrder); err != nil {
			return nil, err
		}
		if v.Type, err = ParseVariableType(typeStr); err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range vars {
		if !vars[i].Type.HasOptions() {
			continue
		}
		opts, err := s.options(ctx, vars[i].ID)
		if err != nil {
			return nil, err
		}
		vars[i].Options = opts
	}
	return vars, nil
}

func (s *Store) options(ctx context.Context, variableID int64) ([]Option, error) {
	rows, err := s.db.Query(ctx, `
		SELECT option_id, variable_id, option_value, COALESCE(option_label, ''), display_order, is_default
		FROM variable_options
		WHERE variable_id = $1
		ORDER BY display_order, option_value
	`, variableID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var opts []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.VariableID, &o.Value, &o.Label, &o.DisplayOrder, &o.IsDefault); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// AddOption inserts an option on a categorical variable.
func (s *Store) AddOption(ctx context.Context, o *Option) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO variable_options (variable_id, option_value, option_label, display_order, is_default)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING option_id
	`, o.VariableID, o.Value, o.Label, o.DisplayOrder, o.IsDefault).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("add option %s: %w", o.Value, err)
	}
	return nil
}

// SetDefaultOption makes one option the default, clearing any previous
// default of the same variable in the same transaction.
func (s *Store) SetDefaultOption(ctx context.Context, variableID int64, optionValue string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE variable_options SET is_default = FALSE WHERE variable_id = $1
	`, variableID); err != nil {
		return fmt.Errorf("clear defaults: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE variable_options SET is_default = TRUE
		WHERE variable_id = $1 AND option_value = $2
	`, variableID, optionValue)
	if err != nil {
		return fmt.Errorf("set default option: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("option %q not found for variable %d", optionValue, variableID)
	}

	return tx.Commit(ctx)
}

// EnsureProject fetches a project by code, creating it if missing.
func (s *Store) EnsureProject(ctx context.Context, code, name, createdBy string) (*Project, error) {
	if name == "" {
		name = code
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO projects (project_code, project_name, created_by)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (project_code) DO NOTHING
	`, code, name, createdBy)
	if err != nil {
		return nil, fmt.Errorf("ensure project %s: %w", code, err)
	}

	var p Project
	err = s.db.QueryRow(ctx, `
		SELECT project_id, project_code, project_name, status, COALESCE(location, ''), COALESCE(created_by, ''), created_at
		FROM projects WHERE project_code = $1
	`, code).Scan(&p.ID, &p.Code, &p.Name, &p.Status, &p.Location, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", code, err)
	}
	return &p, nil
}

// AddInstance places an element in a project, bound to a description version.
func (s *Store) AddInstance(ctx context.Context, inst *Instance) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO project_elements
			(project_id, element_id, description_version_id, instance_code, instance_name, location, created_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING project_element_id
	`, inst.ProjectID, inst.ElementID, inst.VersionID, inst.Code, inst.Name, inst.Location, inst.CreatedBy).Scan(&inst.ID)
	if err != nil {
		return fmt.Errorf("add instance %s: %w", inst.Code, err)
	}
	return nil
}

// Instance fetches one project element by id.
func (s *Store) Instance(ctx context.Context, id int64) (*Instance, error) {
	var inst Instance
	err := s.db.QueryRow(ctx, `
		SELECT project_element_id, project_id, element_id, description_version_id,
		       instance_code, COALESCE(instance_name, ''), COALESCE(location, ''), COALESCE(created_by, '')
		FROM project_elements WHERE project_element_id = $1
	`, id).Scan(&inst.ID, &inst.ProjectID, &inst.ElementID, &inst.VersionID,
		&inst.Code, &inst.Name, &inst.Location, &inst.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("fetch instance %d: %w", id, err)
	}
	return &inst, nil
}

// SetInstanceValue upserts one variable value on an instance. The variable
// is addressed by name within the instance's element.
func (s *Store) SetInstanceValue(ctx context.Context, instanceID int64, variableName, value, updatedBy string) error {
	var variableID int64
	err := s.db.QueryRow(ctx, `
		SELECT v.variable_id
		FROM element_variables v
		JOIN project_elements pe ON pe.element_id = v.element_id
		WHERE pe.project_element_id = $1 AND v.variable_name = $2
	`, instanceID, variableName).Scan(&variableID)
	if err != nil {
		return fmt.Errorf("variable %q not found on instance %d: %w", variableName, instanceID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO project_element_values (project_element_id, variable_id, value, updated_by)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (project_element_id, variable_id)
		DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = NOW()
	`, instanceID, variableID, value, updatedBy)
	if err != nil {
		return fmt.Errorf("set value %s: %w", variableName, err)
	}
	return nil
}
