package model

// Summary backs the public statistics endpoint.
type Summary struct {
	TotalIdeas int `json:"total_ideas"`
	TotalUsers int `json:"total_users"`
}

// Dashboard is the administrator's aggregate view.
type Dashboard struct {
	TotalIdeas int                `json:"total_ideas"`
	TotalUsers int                `json:"total_users"`
	TotalVotes int                `json:"total_votes"`
	ByCategory map[Category]int   `json:"by_category"`
	ByStatus   map[IdeaStatus]int `json:"by_status"`
}
