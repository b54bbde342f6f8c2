package domain

// ReviewStats summarizes a user's review queue at a point in time.
type ReviewStats struct {
	DueCount      int `json:"due_count"`
	ReviewedToday int `json:"reviewed_today"`
	TotalWords    int `json:"total_words"`
}
