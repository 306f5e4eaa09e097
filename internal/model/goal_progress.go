package model

import "math"

// MilestoneProgress derives percent complete from milestones. With no
// milestones the stored progress is returned unchanged. Halves round away
// from zero (math.Round), so 1/8 is 13 and 2/3 is 67.
func MilestoneProgress(milestones []Milestone, stored int) int {
	if len(milestones) == 0 {
		return stored
	}

	completed := 0
	for _, m := range milestones {
		if m.Completed {
			completed++
		}
	}

	return int(math.Round(100 * float64(completed) / float64(len(milestones))))
}
