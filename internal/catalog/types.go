package catalog

import (
	"fmt"
	"strings"
	"time"
)

// VariableType classifies how a variable's value is entered and rendered.
type VariableType int

const (
	TypeText VariableType = iota
	TypeNumeric
	TypeDate
	TypeCategorical
)

// ParseVariableType parses a type string. Legacy spellings from older
// catalogs (RADIO, SELECT, CHECKBOX) all map to Categorical.
func ParseVariableType(s string) (VariableType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEXT":
		return TypeText, nil
	case "NUMERIC", "NUMBER":
		return TypeNumeric, nil
	case "DATE":
		return TypeDate, nil
	case "CATEGORICAL", "RADIO", "SELECT", "CHECKBOX":
		return TypeCategorical, nil
	default:
		return TypeText, fmt.Errorf("unknown variable type %q", s)
	}
}

func (t VariableType) String() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeNumeric:
		return "NUMERIC"
	case TypeDate:
		return "DATE"
	case TypeCategorical:
		return "CATEGORICAL"
	default:
		return fmt.Sprintf("VariableType(%d)", int(t))
	}
}

// HasOptions reports whether the type carries a closed option set.
func (t VariableType) HasOptions() bool {
	return t == TypeCategorical
}

// Element is a catalog item whose description is parameterized by variables.
type Element struct {
	ID        int64
	Code      string
	Name      string
	Category  string
	CreatedBy string
	CreatedAt time.Time
}

// Variable is a named configuration point on an element.
type Variable struct {
	ID           int64
	ElementID    int64
	Name         string
	Type         VariableType
	Unit         string
	DefaultValue string
	Required     bool
	DisplayOrder int
	Options      []Option
}

// Option is one allowed value of a categorical variable.
type Option struct {
	ID           int64
	VariableID   int64
	Value        string
	Label        string
	DisplayOrder int
	IsDefault    bool
}

// Project groups element instances.
type Project struct {
	ID        int64
	Code      string
	Name      string
	Status    string
	Location  string
	CreatedBy string
	CreatedAt time.Time
}

// Instance is a concrete placement of an element within a project,
// bound to one description version.
type Instance struct {
	ID        int64
	ProjectID int64
	ElementID int64
	VersionID int64
	Code      string
	Name      string
	Location  string
	CreatedBy string
}
