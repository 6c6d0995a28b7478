package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trektales/trektalesbackend/models"
	"github.com/trektales/trektalesbackend/repository"
	"github.com/trektales/trektalesbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "validation failed",
		"errors":  utils.FieldErrors(err),
	})
}

func respondServerError(c *gin.Context, err error) {
	// internal detail stays server-side
	utils.LogCleanupError("request", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "something went wrong"})
}

// actingUserID reads the id the auth middleware resolved.
func actingUserID(c *gin.Context) (bson.ObjectID, bool) {
	v, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(v.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return bson.ObjectID{}, false
	}
	return id, true
}

// loadActor fetches the acting user's record. A valid token whose user
// no longer exists counts as unauthenticated.
func loadActor(c *gin.Context, users repository.UserRepository) (*models.User, bool) {
	id, ok := actingUserID(c)
	if !ok {
		return nil, false
	}
	actor, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return nil, false
	}
	return actor, true
}

// publicProfile is the user shape exposed on profile pages: no email,
// no credential material.
func publicProfile(u *models.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"name":           u.Name,
		"bio":            u.Bio,
		"country":        u.Country,
		"avatar":         u.Avatar,
		"storiesWritten": u.StoriesWritten,
		"photosShared":   u.PhotosShared,
		"createdAt":      u.CreatedAt,
	}
}
