package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talent-pipeline/internal/model"
	"talent-pipeline/internal/storage"
)

// SeedDemo writes the demo tenant's sample subscribers and pools the first
// time it runs. Later calls see the seed flag and do nothing. It reports
// whether records were written.
func (d *Directory) SeedDemo(ctx context.Context) (_ bool, err error) {
	defer func() { d.observe("seed_demo", err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err = d.store.Get(ctx, seedFlagKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return false, fmt.Errorf("read seed flag: %w", err)
	}

	subs := demoSubscribers()
	pools := demoPools()
	ops := make([]storage.Op, 0, len(subs)+len(pools)+1)
	for _, s := range subs {
		op, err := setOp(subscriberKey(s.ID), s)
		if err != nil {
			return false, err
		}
		ops = append(ops, op)
	}
	for _, p := range pools {
		op, err := setOp(poolKey(p.ID), p)
		if err != nil {
			return false, err
		}
		ops = append(ops, op)
	}
	ops = append(ops, storage.SetOp(seedFlagKey, []byte("true")))

	if err := d.store.Apply(ctx, ops); err != nil {
		return false, fmt.Errorf("seed demo data: %w", err)
	}

	d.logger.Info("demo data seeded",
		zap.Int("subscribers", len(subs)),
		zap.Int("talent_pools", len(pools)))
	return true, nil
}

func demoSubscribers() []model.Subscriber {
	subs := []model.Subscriber{
		{
			ID:                "1",
			Email:             "sarah@example.com",
			Departments:       []string{"Engineering", "Product"},
			LinkedInURL:       "https://linkedin.com/in/sarah-dev",
			SignupDate:        "2024-01-15",
			Motivation:        "Passionate about building scalable systems and leading technical teams.",
			CurrentLocation:   "San Francisco, CA",
			PreferredLocation: "San Francisco, CA",
			JobTitle:          "Senior Engineering Manager",
			TalentPoolIDs:     []string{"1"},
		},
		{
			ID:                "2",
			Email:             "mike@example.com",
			Departments:       []string{"Marketing", "Sales"},
			SignupDate:        "2024-01-14",
			CurrentLocation:   "New York, NY",
			PreferredLocation: "Remote",
			JobTitle:          "Marketing Specialist",
			TalentPoolIDs:     []string{},
		},
		{
			ID:                "3",
			Email:             "jane@example.com",
			Departments:       []string{"Engineering"},
			LinkedInURL:       "https://linkedin.com/in/jane-engineer",
			SignupDate:        "2024-01-13",
			Motivation:        "Looking to work on innovative ML projects that solve real-world problems.",
			CurrentLocation:   "Austin, TX",
			PreferredLocation: "Austin, TX",
			JobTitle:          "Machine Learning Engineer",
			TalentPoolIDs:     []string{"1", "2"},
		},
		{
			ID:                "4",
			Email:             "alex@example.com",
			Departments:       []string{"Product"},
			LinkedInURL:       "https://linkedin.com/in/alex-pm",
			SignupDate:        "2024-01-12",
			Motivation:        "Product leader focused on user experience and data-driven decisions.",
			CurrentLocation:   "Seattle, WA",
			PreferredLocation: "Seattle, WA",
			JobTitle:          "Senior Product Manager",
			TalentPoolIDs:     []string{"3"},
		},
		{
			ID:                "5",
			Email:             "emily@example.com",
			Departments:       []string{"Engineering"},
			SignupDate:        "2024-01-11",
			CurrentLocation:   "Boston, MA",
			PreferredLocation: "Remote",
			JobTitle:          "Frontend Developer",
			TalentPoolIDs:     []string{},
		},
	}
	for i := range subs {
		subs[i].CompanyID = DemoTenantID
		subs[i].CreatedAt = demoEpoch.Add(time.Duration(i) * time.Minute)
	}
	return subs
}

func demoPools() []model.TalentPool {
	pools := []model.TalentPool{
		{
			ID:          "1",
			Title:       "Senior Engineers",
			Departments: []string{"Engineering"},
			CreatedDate: "2024-01-10",
			Description: "High-potential senior engineering candidates",
		},
		{
			ID:          "2",
			Title:       "ML/AI Specialists",
			Departments: []string{"Engineering", "Product"},
			CreatedDate: "2024-01-12",
			Description: "Candidates with machine learning and AI expertise",
		},
		{
			ID:          "3",
			Title:       "Product Leaders",
			Departments: []string{"Product"},
			CreatedDate: "2024-01-08",
			Description: "Experienced product managers and leaders",
		},
	}
	for i := range pools {
		pools[i].CompanyID = DemoTenantID
		pools[i].CreatedAt = demoEpoch.Add(time.Duration(i) * time.Minute)
	}
	return pools
}
