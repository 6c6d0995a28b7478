package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trektales/trektalesbackend/models"
	"github.com/trektales/trektalesbackend/policy"
	"github.com/trektales/trektalesbackend/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role-management failures are deliberately uniform: the response
// never reveals whether the target account exists, so the role check
// runs before any target lookup and a missing target looks the same as
// an insufficient role.
func forbidRoleAction(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
}

func GetUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}
		user, err := users.FindByID(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": publicProfile(user)})
	}
}

// MakeAdmin promotes a user to admin. Actor must be admin or owner.
func MakeAdmin(users repository.UserRepository) gin.HandlerFunc {
	return changeRole(users, models.RoleAdmin, policy.ActionPromoteUser)
}

// RemoveAdmin demotes an admin back to user. Owner only.
func RemoveAdmin(users repository.UserRepository) gin.HandlerFunc {
	return changeRole(users, models.RoleUser, policy.ActionDemoteAdmin)
}

func changeRole(users repository.UserRepository, to models.Role, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}
		if !policy.Can(actor.Role, action) {
			forbidRoleAction(c)
			return
		}

		targetID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			forbidRoleAction(c)
			return
		}
		target, err := users.FindByID(c.Request.Context(), targetID)
		if err != nil {
			forbidRoleAction(c)
			return
		}

		if !policy.CanChangeRole(actor.Role, target.Role, to) {
			forbidRoleAction(c)
			return
		}

		if err := users.SetRole(c.Request.Context(), targetID, to); err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "role": to})
	}
}

// DeleteUser is the owner's removal of another account, with the same
// content cascade as self-deletion. The owner can never target
// themself through this path.
func DeleteUser(users repository.UserRepository, blogs repository.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}

		targetID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			forbidRoleAction(c)
			return
		}

		if !policy.CanDeleteOtherUser(actor.ID, actor.Role, targetID) {
			forbidRoleAction(c)
			return
		}

		target, err := users.FindByID(c.Request.Context(), targetID)
		if err != nil {
			forbidRoleAction(c)
			return
		}
		if target.Role == models.RoleOwner {
			forbidRoleAction(c)
			return
		}

		if err := cascadeDeleteUser(c, users, blogs, targetID); err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
