package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trektales/trektalesbackend/config"
	"github.com/trektales/trektalesbackend/dto"
	"github.com/trektales/trektalesbackend/models"
	"github.com/trektales/trektalesbackend/repository"
	"github.com/trektales/trektalesbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// issueSession mints the token pair and persists the refresh token on
// the user record. The refresh token is not valid until stored.
func issueSession(c *gin.Context, users repository.UserRepository, user *models.User) (string, string, bool) {
	accessToken, err := utils.GenerateAccessToken(user.ID.Hex())
	if err != nil {
		respondServerError(c, err)
		return "", "", false
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		respondServerError(c, err)
		return "", "", false
	}
	if err := users.SetRefreshToken(c.Request.Context(), user.ID, refreshToken); err != nil {
		respondServerError(c, err)
		return "", "", false
	}
	return accessToken, refreshToken, true
}

func Register(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidation(c, err)
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			respondServerError(c, err)
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:           bson.NewObjectID(),
			Email:        body.Email,
			Name:         body.Name,
			PasswordHash: hash,
			Role:         models.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := users.Create(c.Request.Context(), &user); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
				return
			}
			respondServerError(c, err)
			return
		}

		accessToken, refreshToken, ok := issueSession(c, users, &user)
		if !ok {
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
	}
}

func Login(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidation(c, err)
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), body.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}

		// identity-provider accounts have no usable password
		if user.PasswordHash == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}

		accessToken, refreshToken, ok := issueSession(c, users, user)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
	}
}

// GoogleAuth exchanges an authorization code with the identity
// provider and logs the user in, creating the account on first visit.
func GoogleAuth(users repository.UserRepository, provider config.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.GoogleAuthDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidation(c, err)
			return
		}

		info, err := provider.Exchange(c.Request.Context(), body.Code)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), info.Email)
		if err == repository.ErrNotFound {
			now := time.Now().UTC()
			user = &models.User{
				ID:        bson.NewObjectID(),
				Email:     info.Email,
				Name:      info.Name,
				IsGoogle:  true,
				Avatar:    info.Picture,
				Role:      models.RoleUser,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := users.Create(c.Request.Context(), user); err != nil {
				respondServerError(c, err)
				return
			}
		} else if err != nil {
			respondServerError(c, err)
			return
		}

		accessToken, refreshToken, ok := issueSession(c, users, user)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
	}
}

// Refresh rotates the token pair. Every failure mode collapses to the
// same 401 so a caller cannot tell a forged token from a stale one.
func Refresh(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RefreshDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		claims, err := utils.ValidateToken(body.RefreshToken, utils.RefreshSecret())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		// exact value match against the single stored token; a rotated-out
		// token fails here even though its signature still verifies
		if user.RefreshToken == "" || user.RefreshToken != body.RefreshToken {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		accessToken, refreshToken, ok := issueSession(c, users, user)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
	}
}

func Me(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": actor})
	}
}

func UpdateProfile(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}

		var body dto.UpdateProfileDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidation(c, err)
			return
		}

		set := bson.M{}
		if body.Name != nil {
			v := strings.TrimSpace(*body.Name)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "validation failed",
					"errors":  []utils.FieldError{{Field: "name", Message: "cannot be empty"}},
				})
				return
			}
			set["name"] = v
		}
		if body.Bio != nil {
			set["bio"] = strings.TrimSpace(*body.Bio)
		}
		if body.Country != nil {
			set["country"] = strings.TrimSpace(*body.Country)
		}
		if body.Avatar != nil {
			set["avatar"] = *body.Avatar
		}
		if body.Password != nil {
			if actor.IsGoogle {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "validation failed",
					"errors":  []utils.FieldError{{Field: "password", Message: "not available for identity-provider accounts"}},
				})
				return
			}
			if len(*body.Password) < 8 {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "validation failed",
					"errors":  []utils.FieldError{{Field: "password", Message: "must be at least 8 characters"}},
				})
				return
			}
			hash, err := utils.HashPassword(*body.Password)
			if err != nil {
				respondServerError(c, err)
				return
			}
			set["passwordHash"] = hash
		}

		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "no updates provided"})
			return
		}

		if err := users.UpdateFields(c.Request.Context(), actor.ID, set); err != nil {
			respondServerError(c, err)
			return
		}

		updated, err := users.FindByID(c.Request.Context(), actor.ID)
		if err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": updated})
	}
}

// DeleteAccount removes the caller's account with the full content
// cascade. Irreversible.
func DeleteAccount(users repository.UserRepository, blogs repository.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c)
		if !ok {
			return
		}
		if err := cascadeDeleteUser(c, users, blogs, actorID); err != nil {
			if err == repository.ErrNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
				return
			}
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// cascadeDeleteUser removes the user's posts (with image cleanup),
// pulls their comments from everyone else's posts, then deletes the
// user record. Shared by self-delete and the owner's admin delete.
func cascadeDeleteUser(c *gin.Context, users repository.UserRepository, blogs repository.BlogRepository, userID bson.ObjectID) error {
	ctx := c.Request.Context()

	deleted, err := blogs.DeleteByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	var imageUrls []string
	for _, b := range deleted {
		imageUrls = append(imageUrls, b.ImageUrls...)
	}
	utils.DeleteImagesByPublicURL(ctx, imageUrls)

	if err := blogs.PullCommentsByAuthor(ctx, userID); err != nil {
		return err
	}

	return users.Delete(ctx, userID)
}

// Logout clears the stored refresh token so it can never rotate again.
// The client clears its local state regardless of this call's outcome.
func Logout(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c)
		if !ok {
			return
		}
		// best effort revoke
		_ = users.SetRefreshToken(c.Request.Context(), actorID, "")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
