// internal/model/talent_pool.go
package model

import "time"

// TalentPool is a recruiter-defined grouping of subscribers. Departments are
// a matching hint, not a filter.
type TalentPool struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Departments []string  `json:"departments"`
	CompanyID   string    `json:"companyId"`
	CreatedDate Date      `json:"createdDate"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TalentPoolInput struct {
	Title       string   `json:"title"`
	Departments []string `json:"departments"`
	CompanyID   string   `json:"companyId"`
	Description string   `json:"description,omitempty"`
}

type TalentPoolPatch struct {
	Title       *string   `json:"title,omitempty"`
	Departments *[]string `json:"departments,omitempty"`
	Description *string   `json:"description,omitempty"`
}

func (p *TalentPool) Apply(patch TalentPoolPatch) {
	setString(&p.Title, patch.Title)
	setList(&p.Departments, patch.Departments)
	setString(&p.Description, patch.Description)
}
