package stats

import "talent-pipeline/internal/model"

type DashboardStats struct {
	Total         int    `json:"total"`
	Recent        int    `json:"recent"`
	WithLinkedIn  int    `json:"withLinkedIn"`
	TopDepartment Bucket `json:"topDepartment"`
	PoolCount     int    `json:"poolCount"`
}

// Dashboard summarizes everything a tenant can see.
func Dashboard(subs []model.Subscriber, pools []model.TalentPool, today model.Date) DashboardStats {
	return DashboardStats{
		Total:         CountTotal(subs),
		Recent:        CountRecent(subs, DefaultWindowDays, today),
		WithLinkedIn:  CountWithField(subs, LinkedIn),
		TopDepartment: TopByFrequency(subs, Departments),
		PoolCount:     len(pools),
	}
}

type PoolStats struct {
	Total          int    `json:"total"`
	RecentJoins    int    `json:"recentJoins"`
	WithLinkedIn   int    `json:"withLinkedIn"`
	WithMotivation int    `json:"withMotivation"`
	TopLocation    Bucket `json:"topLocation"`
}

// Pool summarizes the members of a single talent pool.
func Pool(members []model.Subscriber, today model.Date) PoolStats {
	return PoolStats{
		Total:          CountTotal(members),
		RecentJoins:    CountRecent(members, DefaultWindowDays, today),
		WithLinkedIn:   CountWithField(members, LinkedIn),
		WithMotivation: CountWithField(members, Motivation),
		TopLocation:    TopByFrequency(members, CurrentLocation),
	}
}
