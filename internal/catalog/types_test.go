package catalog

import "testing"

func TestParseVariableType(t *testing.T) {
	tests := []struct {
		input   string
		want    VariableType
		wantErr bool
	}{
		{"TEXT", TypeText, false},
		{"text", TypeText, false},
		{"NUMERIC", TypeNumeric, false},
		{"NUMBER", TypeNumeric, false},
		{"DATE", TypeDate, false},
		{"CATEGORICAL", TypeCategorical, false},
		{"RADIO", TypeCategorical, false},
		{"SELECT", TypeCategorical, false},
		{"CHECKBOX", TypeCategorical, false},
		{"  select ", TypeCategorical, false},
		{"BLOB", TypeText, true},
		{"", TypeText, true},
	}

	for _, tt := range tests {
		got, err := ParseVariableType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariableType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseVariableType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestVariableTypeRoundTrip(t *testing.T) {
	for _, vt := range []VariableType{TypeText, TypeNumeric, TypeDate, TypeCategorical} {
		parsed, err := ParseVariableType(vt.String())
		if err != nil {
			t.Fatalf("ParseVariableType(%s): %v", vt, err)
		}
		if parsed != vt {
			t.Errorf("round trip %v -> %s -> %v", vt, vt.String(), parsed)
		}
	}
}

func TestHasOptions(t *testing.T) {
	tests := []struct {
		vt   VariableType
		want bool
	}{
		{TypeText, false},
		{TypeNumeric, false},
		{TypeDate, false},
		{TypeCategorical, true},
	}

	for _, tt := range tests {
		if got := tt.vt.HasOptions(); got != tt.want {
			t.Errorf("%v.HasOptions() = %v, want %v", tt.vt, got, tt.want)
		}
	}
}
