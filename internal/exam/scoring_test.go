package exam

import "testing"

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{9, 10, 90},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 5, 60},
		{4, 5, 80},
		{0, 0, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestPercentageMonotonic(t *testing.T) {
	const total = 18
	prev := -1
	for correct := 0; correct <= total; correct++ {
		p := Percentage(correct, total)
		if p < prev {
			t.Fatalf("Percentage not monotonic: %d correct -> %d%%, below previous %d%%", correct, p, prev)
		}
		prev = p
	}
	if Percentage(total, total) != 100 {
		t.Error("full score must be 100%")
	}
}

func TestPassed(t *testing.T) {
	if !Passed(80) {
		t.Error("80%% must pass")
	}
	if Passed(79) {
		t.Error("79%% must fail")
	}
}

func TestOverallPassed(t *testing.T) {
	// 9/10 theory (90%) and 3/5 simulation (60%): theory passes, overall fails.
	theory := Percentage(9, 10)
	sim := Percentage(3, 5)
	if !Passed(theory) {
		t.Fatalf("theory %d%% should pass", theory)
	}
	if OverallPassed(theory, sim) {
		t.Error("overall must fail when simulation is below threshold")
	}
	if !OverallPassed(85, 80) {
		t.Error("overall must pass when both stages pass")
	}
}
