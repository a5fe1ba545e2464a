package main

import "testing"

func TestProgressEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"on", true},
		{"ON", true},
		{" on ", true},
		{"off", false},
	}
	for _, tt := range tests {
		got, err := progressEnabled(tt.value)
		if err != nil {
			t.Errorf("progressEnabled(%q): %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("progressEnabled(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	if _, err := progressEnabled("maybe"); err == nil {
		t.Error("want error for unknown --ui value")
	}
}
