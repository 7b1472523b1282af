package export

import (
	"strconv"

	"talent-pipeline/internal/model"
)

var (
	SubscriberHeader = []string{"Email", "Departments", "LinkedIn URL", "Signup Date"}
	PoolHeader       = []string{"Pool Name", "Candidate Count", "Departments", "Created Date"}
	CandidateHeader  = []string{
		"Email", "Job Title", "Departments", "Current Location",
		"Preferred Location", "LinkedIn URL", "Motivation", "Signup Date",
	}
)

// Subscribers renders the recruiter's subscriber list.
func Subscribers(subs []model.Subscriber) string {
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []string{
			s.Email,
			JoinList(s.Departments),
			s.LinkedInURL,
			s.SignupDate.String(),
		})
	}
	return ToCSV(SubscriberHeader, rows)
}

// PoolSummary renders one row per pool with its member count among subs.
func PoolSummary(pools []model.TalentPool, subs []model.Subscriber) string {
	rows := make([][]string, 0, len(pools))
	for _, p := range pools {
		count := 0
		for _, s := range subs {
			if s.InPool(p.ID) {
				count++
			}
		}
		rows = append(rows, []string{
			p.Title,
			strconv.Itoa(count),
			JoinList(p.Departments),
			p.CreatedDate.String(),
		})
	}
	return ToCSV(PoolHeader, rows)
}

// PoolCandidates renders the full profile of each member of a pool.
func PoolCandidates(members []model.Subscriber) string {
	rows := make([][]string, 0, len(members))
	for _, s := range members {
		rows = append(rows, []string{
			s.Email,
			s.JobTitle,
			JoinList(s.Departments),
			s.CurrentLocation,
			s.PreferredLocation,
			s.LinkedInURL,
			s.Motivation,
			s.SignupDate.String(),
		})
	}
	return ToCSV(CandidateHeader, rows)
}
