// Package membership plans changes to the subscriber/talent-pool relation.
// It performs no I/O: callers load records, plan, and persist the result.
package membership

import (
	"errors"
	"slices"
	"strings"

	"talent-pipeline/internal/model"
)

type Mode string

const (
	ModeAdd     Mode = "add"
	ModeReplace Mode = "replace"
)

var ErrInvalidMode = errors.New("membership: mode must be add or replace")

func (m Mode) Valid() bool {
	return m == ModeAdd || m == ModeReplace
}

// Conflict describes a subscriber that would lose memberships under replace.
type Conflict struct {
	SubscriberID  string   `json:"id"`
	Email         string   `json:"email"`
	ExistingPools []string `json:"existingPools"`
}

type Plan struct {
	Updated   []model.Subscriber
	Conflicts []Conflict
}

// Normalize trims ids, drops blanks and duplicates, and keeps first-seen
// order. The result is never nil.
func Normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Assign replaces the subscriber's membership set wholesale.
func Assign(sub model.Subscriber, poolIDs []string) model.Subscriber {
	sub.TalentPoolIDs = Normalize(poolIDs)
	return sub
}

// Remove drops poolID from the subscriber's set and reports whether it was there.
func Remove(sub model.Subscriber, poolID string) (model.Subscriber, bool) {
	if !sub.InPool(poolID) {
		return sub, false
	}
	kept := make([]string, 0, len(sub.TalentPoolIDs)-1)
	for _, id := range sub.TalentPoolIDs {
		if id != poolID {
			kept = append(kept, id)
		}
	}
	sub.TalentPoolIDs = kept
	return sub, true
}

// Cascade returns the subscribers that referenced poolID, with the id removed.
// Untouched subscribers are not returned.
func Cascade(subs []model.Subscriber, poolID string) []model.Subscriber {
	var changed []model.Subscriber
	for _, s := range subs {
		if updated, ok := Remove(s, poolID); ok {
			changed = append(changed, updated)
		}
	}
	return changed
}

// Union appends the ids in added that existing does not hold yet.
func Union(existing, added []string) []string {
	return Normalize(append(slices.Clone(existing), added...))
}

// Lost returns the ids held in existing that are absent from next.
func Lost(existing, next []string) []string {
	var lost []string
	for _, id := range existing {
		if !slices.Contains(next, id) {
			lost = append(lost, id)
		}
	}
	return lost
}

// PlanBulk computes a bulk assignment. Under replace, subscribers that would
// lose a pool are reported as conflicts and nothing is planned unless confirm
// is set. titles maps pool id to title; unknown ids are reported as is.
func PlanBulk(subs []model.Subscriber, poolIDs []string, mode Mode, confirm bool, titles map[string]string) (Plan, error) {
	if !mode.Valid() {
		return Plan{}, ErrInvalidMode
	}
	poolIDs = Normalize(poolIDs)

	var plan Plan
	if mode == ModeReplace && !confirm {
		for _, s := range subs {
			lost := Lost(s.TalentPoolIDs, poolIDs)
			if len(lost) == 0 {
				continue
			}
			names := make([]string, 0, len(lost))
			for _, id := range lost {
				if title, ok := titles[id]; ok {
					names = append(names, title)
				} else {
					names = append(names, id)
				}
			}
			plan.Conflicts = append(plan.Conflicts, Conflict{
				SubscriberID:  s.ID,
				Email:         s.Email,
				ExistingPools: names,
			})
		}
		if len(plan.Conflicts) > 0 {
			return plan, nil
		}
	}

	for _, s := range subs {
		switch mode {
		case ModeAdd:
			s.TalentPoolIDs = Union(s.TalentPoolIDs, poolIDs)
		case ModeReplace:
			s.TalentPoolIDs = slices.Clone(poolIDs)
		}
		plan.Updated = append(plan.Updated, s)
	}
	return plan, nil
}
