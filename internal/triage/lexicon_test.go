package triage

import "testing"

func TestHasMaintenanceTerm_Substring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain term", "water leak near server room", true},
		{"term inside word", "the overheating unit", true}, // "heat" substring
		{"no terms", "xyzzy plugh quux", false},
		{"empty text", "", false},
		{"term only as token", "broken", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hasMaintenanceTerm(tt.text); got != tt.want {
				t.Errorf("hasMaintenanceTerm(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHasPersonalTerm_WholeWordOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact token", "i feel very stressed about my exam grade", true},
		{"substring does not match", "the boiler is illuminated", false}, // "ill" inside a word
		{"painted is not pain", "the wall was painted badly", false},
		{"multiple tokens", "assignment deadline stress", true},
		{"no terms", "water leak in the basement", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hasPersonalTerm(tt.text); got != tt.want {
				t.Errorf("hasPersonalTerm(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Water LEAK  ", "water leak"},
		{"already lower", "already lower"},
		{"\tTabbed\n", "tabbed"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
