package domain

// Progress feeds a "step N of M" indicator. It has no effect on control flow.
type Progress struct {
	Current int `json:"current"` // 1-based position, 0 when the step is not in the ordered sequence
	Total   int `json:"total"`
}
