package model

import "testing"

func milestones(done ...bool) []Milestone {
	ms := make([]Milestone, len(done))
	for i, d := range done {
		ms[i] = Milestone{Title: "step", Completed: d}
	}
	return ms
}

func TestMilestoneProgress(t *testing.T) {
	tests := []struct {
		name       string
		milestones []Milestone
		stored     int
		want       int
	}{
		{"empty keeps stored", nil, 42, 42},
		{"empty slice keeps stored", []Milestone{}, 0, 0},
		{"two of three", milestones(true, false, true), 0, 67},
		{"one of three", milestones(true, false, false), 0, 33},
		{"one of four", milestones(true, false, false, false), 90, 25},
		{"one of eight rounds half up", milestones(true, false, false, false, false, false, false, false), 0, 13},
		{"one of six", milestones(true, false, false, false, false, false), 0, 17},
		{"none done", milestones(false, false), 60, 0},
		{"all done", milestones(true, true, true), 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MilestoneProgress(tt.milestones, tt.stored); got != tt.want {
				t.Errorf("MilestoneProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMilestoneProgressDoesNotMutate(t *testing.T) {
	ms := milestones(true, false)
	MilestoneProgress(ms, 0)
	if !ms[0].Completed || ms[1].Completed {
		t.Error("MilestoneProgress() mutated its input")
	}
}
