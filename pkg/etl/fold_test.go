package etl

import "testing"

func TestFoldAccents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii passthrough", "California", "California"},
		{"french acute", "Café", "Cafe"},
		{"spanish", "Ciudad de México", "Ciudad de Mexico"},
		{"german umlaut", "Baden-Württemberg", "Baden-Wurttemberg"},
		{"czech", "Plzeňský kraj", "Plzensky kraj"},
		{"empty", "", ""},
		{"mixed", "São Paulo 123", "Sao Paulo 123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldAccents(tt.input); got != tt.want {
				t.Errorf("FoldAccents(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFoldAccentsIdempotent(t *testing.T) {
	once := FoldAccents("Ciudad de México")
	twice := FoldAccents(once)
	if once != twice {
		t.Errorf("folding is not idempotent: %q != %q", once, twice)
	}
}
