// Package policy is the single source of truth for role and ownership
// rules. Handlers never re-derive these checks inline.
package policy

import (
	"github.com/trektales/trektalesbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Action string

const (
	ActionPromoteUser     Action = "user.promote"
	ActionDemoteAdmin     Action = "user.demote"
	ActionDeleteUser      Action = "user.delete"
	ActionModerateContent Action = "content.moderate" // edit/delete content owned by someone else
)

// rank gives the total order user < admin < owner.
var rank = map[models.Role]int{
	models.RoleUser:  0,
	models.RoleAdmin: 1,
	models.RoleOwner: 2,
}

// minRole maps each privileged action to the least role allowed to
// perform it.
var minRole = map[Action]models.Role{
	ActionPromoteUser:     models.RoleAdmin,
	ActionDemoteAdmin:     models.RoleOwner,
	ActionDeleteUser:      models.RoleOwner,
	ActionModerateContent: models.RoleAdmin,
}

func Can(actor models.Role, action Action) bool {
	required, ok := minRole[action]
	if !ok {
		return false
	}
	return rank[actor] >= rank[required]
}

// CanMutatePost: the owning author always may; otherwise moderation
// privileges are required.
func CanMutatePost(actorID bson.ObjectID, actorRole models.Role, postAuthor bson.ObjectID) bool {
	if actorID == postAuthor {
		return true
	}
	return Can(actorRole, ActionModerateContent)
}

// CanDeleteComment mirrors CanMutatePost for embedded comments.
func CanDeleteComment(actorID bson.ObjectID, actorRole models.Role, commentAuthor bson.ObjectID) bool {
	if actorID == commentAuthor {
		return true
	}
	return Can(actorRole, ActionModerateContent)
}

// CanChangeRole gates promotions and demotions. The owner role itself
// is never a valid target.
func CanChangeRole(actorRole models.Role, target models.Role, to models.Role) bool {
	if target == models.RoleOwner || to == models.RoleOwner {
		return false
	}
	switch {
	case target == models.RoleUser && to == models.RoleAdmin:
		return Can(actorRole, ActionPromoteUser)
	case target == models.RoleAdmin && to == models.RoleUser:
		return Can(actorRole, ActionDemoteAdmin)
	default:
		return false
	}
}

// CanDeleteOtherUser: owner only, and never against themself through
// the admin path.
func CanDeleteOtherUser(actorID bson.ObjectID, actorRole models.Role, targetID bson.ObjectID) bool {
	if actorID == targetID {
		return false
	}
	return Can(actorRole, ActionDeleteUser)
}
