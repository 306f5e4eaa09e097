package model

// VisibleToMentor is false only when the owner explicitly hid the goal.
// An absent flag means visible.
func VisibleToMentor(flag *bool) bool {
	return flag == nil || *flag
}
