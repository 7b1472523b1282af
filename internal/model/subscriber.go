// internal/model/subscriber.go
package model

import (
	"slices"
	"time"
)

// Subscriber is a candidate's interest record, owned by exactly one tenant.
type Subscriber struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Departments       []string  `json:"departments"`
	LinkedInURL       string    `json:"linkedInUrl,omitempty"`
	CompanyID         string    `json:"companyId"`
	SignupDate        Date      `json:"signupDate"`
	Motivation        string    `json:"motivation,omitempty"`
	CurrentLocation   string    `json:"currentLocation,omitempty"`
	PreferredLocation string    `json:"preferredLocation,omitempty"`
	JobTitle          string    `json:"jobTitle,omitempty"`
	TalentPoolIDs     []string  `json:"talentPoolIds"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (s Subscriber) InPool(poolID string) bool {
	return slices.Contains(s.TalentPoolIDs, poolID)
}

type SubscriberInput struct {
	Email             string   `json:"email"`
	CompanyID         string   `json:"companyId"`
	Departments       []string `json:"departments"`
	LinkedInURL       string   `json:"linkedInUrl,omitempty"`
	Motivation        string   `json:"motivation,omitempty"`
	CurrentLocation   string   `json:"currentLocation,omitempty"`
	PreferredLocation string   `json:"preferredLocation,omitempty"`
	JobTitle          string   `json:"jobTitle,omitempty"`
	TalentPoolIDs     []string `json:"talentPoolIds,omitempty"`
}

// SubscriberPatch is a recruiter-side partial update. ID, company and
// signup date cannot be changed.
type SubscriberPatch struct {
	Email             *string   `json:"email,omitempty"`
	Departments       *[]string `json:"departments,omitempty"`
	LinkedInURL       *string   `json:"linkedInUrl,omitempty"`
	Motivation        *string   `json:"motivation,omitempty"`
	CurrentLocation   *string   `json:"currentLocation,omitempty"`
	PreferredLocation *string   `json:"preferredLocation,omitempty"`
	JobTitle          *string   `json:"jobTitle,omitempty"`
	TalentPoolIDs     *[]string `json:"talentPoolIds,omitempty"`
}

func (s *Subscriber) Apply(p SubscriberPatch) {
	setString(&s.Email, p.Email)
	setList(&s.Departments, p.Departments)
	setList(&s.TalentPoolIDs, p.TalentPoolIDs)
	s.Enrich(Profile{
		LinkedInURL:       p.LinkedInURL,
		Motivation:        p.Motivation,
		CurrentLocation:   p.CurrentLocation,
		PreferredLocation: p.PreferredLocation,
		JobTitle:          p.JobTitle,
	})
}

// Profile holds the optional fields a candidate fills in after signing up.
type Profile struct {
	LinkedInURL       *string `json:"linkedInUrl,omitempty"`
	Motivation        *string `json:"motivation,omitempty"`
	CurrentLocation   *string `json:"currentLocation,omitempty"`
	PreferredLocation *string `json:"preferredLocation,omitempty"`
	JobTitle          *string `json:"jobTitle,omitempty"`
}

func (s *Subscriber) Enrich(p Profile) {
	setString(&s.LinkedInURL, p.LinkedInURL)
	setString(&s.Motivation, p.Motivation)
	setString(&s.CurrentLocation, p.CurrentLocation)
	setString(&s.PreferredLocation, p.PreferredLocation)
	setString(&s.JobTitle, p.JobTitle)
}
