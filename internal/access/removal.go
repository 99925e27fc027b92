package access

import "github.com/spec-kit/crm-service/internal/domain"

// RemovalPlan lists everything that must change, atomically, when an identity is removed.
type RemovalPlan struct {
	IdentityID    string
	DeleteTeamIDs []string
	DeleteListIDs []string
	UnlinkTeamIDs []string
	UnlinkListIDs []string
}

// PlanRemoval splits the teams and lists member belongs to. Those created by the member or by
// managerID, the manager deleting it, are deleted outright; the rest are only unlinked.
func (Policy) PlanRemoval(member *domain.Identity, managerID string, teams []domain.Team, lists []domain.List) RemovalPlan {
	owned := func(creatorID string) bool {
		return creatorID == member.ID || creatorID == managerID
	}
	plan := RemovalPlan{
		IdentityID:    member.ID,
		DeleteTeamIDs: []string{},
		DeleteListIDs: []string{},
		UnlinkTeamIDs: []string{},
		UnlinkListIDs: []string{},
	}
	for _, team := range teams {
		if owned(team.CreatorID) {
			plan.DeleteTeamIDs = append(plan.DeleteTeamIDs, team.ID)
		} else {
			plan.UnlinkTeamIDs = append(plan.UnlinkTeamIDs, team.ID)
		}
	}
	for _, list := range lists {
		if owned(list.CreatorID) {
			plan.DeleteListIDs = append(plan.DeleteListIDs, list.ID)
		} else {
			plan.UnlinkListIDs = append(plan.UnlinkListIDs, list.ID)
		}
	}
	return plan
}
