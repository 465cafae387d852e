package services

import (
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"
)

type permissionService struct{}

// NewPermissionService creates the role capability predicate.
func NewPermissionService() interfaces.PermissionService {
	return &permissionService{}
}

// Can reports whether the actor may perform the action within the clan.
// Officers (leader or elder) run auctions, randomizers and activity credits;
// penalties and manual adjustments are leader-only.
func (s *permissionService) Can(actor *entities.Member, action interfaces.Action, resourceClanID int64) bool {
	if actor == nil || actor.ClanID != resourceClanID {
		return false
	}

	switch action {
	case interfaces.ActionIssuePenalty, interfaces.ActionAdminAdjust:
		return actor.Role == entities.MemberRoleLeader
	case interfaces.ActionManageAuction, interfaces.ActionRunRandomizer, interfaces.ActionCreditActivity:
		return actor.IsOfficer()
	default:
		return false
	}
}
