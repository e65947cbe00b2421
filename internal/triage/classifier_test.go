package triage

import "testing"

func TestDistribution_Top(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dist     Distribution
		wantTop  string
		wantProb float64
	}{
		{"single label", Distribution{"Electrical": 0.9}, "Electrical", 0.9},
		{"picks max", Distribution{"Electrical": 0.2, "Plumbing": 0.7, "IT": 0.1}, "Plumbing", 0.7},
		{"tie breaks lexicographically", Distribution{"High": 0.5, "Critical": 0.5}, "Critical", 0.5},
		{"empty", Distribution{}, "", 0},
		{"nil", nil, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			top, prob := tt.dist.Top()
			if top != tt.wantTop {
				t.Errorf("Top() label = %q, want %q", top, tt.wantTop)
			}
			if prob != tt.wantProb {
				t.Errorf("Top() prob = %v, want %v", prob, tt.wantProb)
			}
		})
	}
}
