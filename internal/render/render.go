package render

import (
	"regexp"
	"strings"
)

var (
	placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)
	digitSuffixRe = regexp.MustCompile(`_\d+$`)
)

// Render substitutes every placeholder in a template. binds maps
// placeholder name to variable name; values and defaults are keyed by
// variable name. Resolution per placeholder: instance value, then
// variable default, then empty string. A placeholder with no binding is
// retried with its trailing _<digits> suffix stripped, then with a
// literal trailing _1 stripped. Raw {name} tokens never survive into
// the output; the result is deterministic for fixed inputs.
func Render(tmpl string, binds, values, defaults map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := token[1 : len(token)-1]
		return resolve(name, binds, values, defaults)
	})
}

func resolve(placeholder string, binds, values, defaults map[string]string) string {
	if variable, ok := binds[placeholder]; ok {
		return lookup(variable, values, defaults)
	}

	// Suffix-decorated names from independently collected templates:
	// material_1 falls back to material.
	if base := digitSuffixRe.ReplaceAllString(placeholder, ""); base != placeholder {
		if variable, ok := binds[base]; ok {
			return lookup(variable, values, defaults)
		}
	}
	if base, ok := strings.CutSuffix(placeholder, "_1"); ok && base != "" {
		if variable, ok := binds[base]; ok {
			return lookup(variable, values, defaults)
		}
	}
	return ""
}

func lookup(variable string, values, defaults map[string]string) string {
	if v, ok := values[variable]; ok {
		return v
	}
	if d, ok := defaults[variable]; ok {
		return d
	}
	return ""
}
