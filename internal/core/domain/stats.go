package domain

type DashboardStats struct {
	TotalBallots     int64 `json:"total_ballots"`
	OpenBallots      int64 `json:"open_ballots"`
	UpcomingBallots  int64 `json:"upcoming_ballots"`
	CompletedBallots int64 `json:"completed_ballots"`
	TotalVotes       int64 `json:"total_votes"`
	TotalUsers       int64 `json:"total_users"`
	TodayPresent     int64 `json:"today_present"`
	TotalPresent     int64 `json:"total_present"`
}

type CountDrift struct {
	BallotID   string `json:"ballot_id"`
	CachedSum  int64  `json:"cached_sum"`
	ActualRows int64  `json:"actual_rows"`
}
