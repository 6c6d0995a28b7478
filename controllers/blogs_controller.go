package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/trektales/trektalesbackend/dto"
	"github.com/trektales/trektalesbackend/models"
	"github.com/trektales/trektalesbackend/policy"
	"github.com/trektales/trektalesbackend/repository"
	"github.com/trektales/trektalesbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func GetBlogs(blogs repository.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		filter := repository.BlogListFilter{
			Search: strings.TrimSpace(c.Query("search")),
			Tag:    strings.TrimSpace(c.Query("tag")),
			Page:   page,
			Limit:  limit,
		}

		// drafts stay hidden unless the caller filters explicitly
		published := true
		filter.Published = &published
		if b, err := utils.ParseBoolQuery(c.Query("published")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid published filter"})
			return
		} else if b != nil {
			filter.Published = b
		}
		if b, err := utils.ParseBoolQuery(c.Query("featured")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid featured filter"})
			return
		} else if b != nil {
			filter.Featured = b
		}
		if authorHex := c.Query("author"); authorHex != "" {
			authorID, err := bson.ObjectIDFromHex(authorHex)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "invalid author id"})
				return
			}
			filter.Author = &authorID
		}

		items, total, err := blogs.List(c.Request.Context(), filter)
		if err != nil {
			respondServerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GetBlog returns one post and bumps its view counter. Every read
// counts, including repeats from the same viewer.
func GetBlog(blogs repository.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}

		blog, err := blogs.FindByIDAndBumpViews(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

// bindBlogPayload accepts either a plain JSON body or a multipart form
// with a "data" field plus image files.
func bindBlogPayload(c *gin.Context, out any) ([]*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var files []*multipart.FileHeader
		if form, err := c.MultipartForm(); err == nil && form != nil {
			files = form.File["images"]
		}
		jsonData := c.PostForm("data")
		if jsonData == "" {
			jsonData = "{}"
		}
		if err := json.Unmarshal([]byte(jsonData), out); err != nil {
			return nil, err
		}
		return files, nil
	}
	return nil, c.ShouldBindJSON(out)
}

func CreateBlog(blogs repository.BlogRepository, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c)
		if !ok {
			return
		}

		var body dto.CreateBlogDTO
		files, err := bindBlogPayload(c, &body)
		if err != nil {
			respondValidation(c, err)
			return
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" || strings.TrimSpace(body.Body) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "validation failed",
				"errors": []utils.FieldError{
					{Field: "title", Message: "is required"},
					{Field: "body", Message: "is required"},
				},
			})
			return
		}

		slug := utils.GenerateSlug(body.Title)

		var imageUrls []string
		if len(files) > 0 {
			gcs, bucket, err := utils.NewGCSClient(c.Request.Context())
			if err != nil {
				respondServerError(c, err)
				return
			}
			defer gcs.Close()
			imageUrls, err = utils.UploadImagesToGCSAndGetPublicURLs(c.Request.Context(), gcs, bucket, slug, files)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
		}

		now := time.Now().UTC()
		blog := models.Blog{
			ID:        bson.NewObjectID(),
			Author:    actorID,
			Title:     body.Title,
			Subtitle:  strings.TrimSpace(body.Subtitle),
			Slug:      slug,
			Body:      body.Body,
			Excerpt:   strings.TrimSpace(body.Excerpt),
			Tags:      utils.DedupeTags(body.Tags),
			ImageUrls: imageUrls,
			Published: body.Published,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if body.Location != nil {
			blog.Location = &models.GeoPoint{
				Name: body.Location.Name,
				Lat:  body.Location.Lat,
				Lng:  body.Location.Lng,
			}
		}

		if err := blogs.Create(c.Request.Context(), &blog); err != nil {
			respondServerError(c, err)
			return
		}

		// advisory counters, never worth failing the create over
		utils.LogCleanupError("bump counters",
			users.BumpCounters(c.Request.Context(), actorID, 1, len(imageUrls)))

		c.JSON(http.StatusCreated, blog)
	}
}

func UpdateBlog(blogs repository.BlogRepository, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}

		var body dto.UpdateBlogDTO
		files, err := bindBlogPayload(c, &body)
		if err != nil {
			respondValidation(c, err)
			return
		}

		blog, err := blogs.FindByID(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}

		if !policy.CanMutatePost(actor.ID, actor.Role, blog.Author) {
			c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}

		set := bson.M{}
		if body.Title != nil {
			v := strings.TrimSpace(*body.Title)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "validation failed",
					"errors":  []utils.FieldError{{Field: "title", Message: "cannot be empty"}},
				})
				return
			}
			set["title"] = v
			set["slug"] = utils.GenerateSlug(v)
		}
		if body.Subtitle != nil {
			set["subtitle"] = strings.TrimSpace(*body.Subtitle)
		}
		if body.Body != nil {
			set["body"] = *body.Body
		}
		if body.Excerpt != nil {
			set["excerpt"] = strings.TrimSpace(*body.Excerpt)
		}
		if body.Tags != nil {
			set["tags"] = utils.DedupeTags(*body.Tags)
		}
		if body.Published != nil {
			set["published"] = *body.Published
		}
		if body.Featured != nil {
			// featuring is a moderation call, not an author one
			if !policy.Can(actor.Role, policy.ActionModerateContent) {
				c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
				return
			}
			set["featured"] = *body.Featured
		}
		if body.Location != nil {
			set["location"] = models.GeoPoint{
				Name: body.Location.Name,
				Lat:  body.Location.Lat,
				Lng:  body.Location.Lng,
			}
		}

		// images: drop the removed ones that actually belong to the post,
		// append freshly uploaded ones
		imagesToDelete := utils.IntersectStrings(body.RemovedImagesUrls, blog.ImageUrls)
		var newUrls []string
		if len(files) > 0 {
			gcs, bucket, err := utils.NewGCSClient(c.Request.Context())
			if err != nil {
				respondServerError(c, err)
				return
			}
			defer gcs.Close()
			newUrls, err = utils.UploadImagesToGCSAndGetPublicURLs(c.Request.Context(), gcs, bucket, blog.Slug, files)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
		}
		if len(imagesToDelete) > 0 || len(newUrls) > 0 {
			set["imageUrls"] = utils.MergeImageUrlsArrays(blog.ImageUrls, imagesToDelete, newUrls)
		}

		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "no updates provided"})
			return
		}

		if err := blogs.UpdateFields(c.Request.Context(), id, set); err != nil {
			if err == repository.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
				return
			}
			respondServerError(c, err)
			return
		}

		// old images are orphans now
		utils.DeleteImagesByPublicURL(c.Request.Context(), imagesToDelete)
		utils.LogCleanupError("bump counters",
			users.BumpCounters(c.Request.Context(), blog.Author, 0, len(newUrls)-len(imagesToDelete)))

		updated, err := blogs.FindByID(c.Request.Context(), id)
		if err != nil {
			respondServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteBlog(blogs repository.BlogRepository, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}

		blog, err := blogs.FindByID(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}

		if !policy.CanMutatePost(actor.ID, actor.Role, blog.Author) {
			c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}

		if err := blogs.Delete(c.Request.Context(), id); err != nil {
			if err == repository.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
				return
			}
			respondServerError(c, err)
			return
		}

		utils.DeleteImagesByPublicURL(c.Request.Context(), blog.ImageUrls)
		utils.LogCleanupError("bump counters",
			users.BumpCounters(c.Request.Context(), blog.Author, -1, -len(blog.ImageUrls)))

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ToggleLike flips the caller's membership in the post's like set.
// A double-submit toggles twice; callers wanting a fixed state must
// read first.
func ToggleLike(blogs repository.BlogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c)
		if !ok {
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}

		blog, err := blogs.FindByID(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}

		liked := false
		for _, uid := range blog.Likes {
			if uid == actorID {
				liked = true
				break
			}
		}

		likes := make([]bson.ObjectID, 0, len(blog.Likes)+1)
		if liked {
			err = blogs.RemoveLike(c.Request.Context(), id, actorID)
			for _, uid := range blog.Likes {
				if uid != actorID {
					likes = append(likes, uid)
				}
			}
		} else {
			err = blogs.AddLike(c.Request.Context(), id, actorID)
			likes = append(likes, blog.Likes...)
			likes = append(likes, actorID)
		}
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"liked":      !liked,
			"likes":      likes,
			"likesCount": len(likes),
		})
	}
}

func AddComment(blogs repository.BlogRepository, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c)
		if !ok {
			return
		}

		var body dto.AddCommentDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidation(c, err)
			return
		}
		text := strings.TrimSpace(body.Text)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "validation failed",
				"errors":  []utils.FieldError{{Field: "text", Message: "cannot be empty"}},
			})
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}

		// resolve the author name up front for immediate display; if the
		// profile read fails the comment still goes in without it
		authorName := ""
		if actor, err := users.FindByID(c.Request.Context(), actorID); err == nil {
			authorName = actor.Name
		}

		comment := models.Comment{
			ID:         uuid.New().String(),
			Author:     actorID,
			AuthorName: authorName,
			Text:       text,
			CreatedAt:  time.Now().UTC(),
		}

		if err := blogs.PushComment(c.Request.Context(), id, comment); err != nil {
			if err == repository.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
				return
			}
			respondServerError(c, err)
			return
		}

		c.JSON(http.StatusCreated, comment)
	}
}

func DeleteComment(blogs repository.BlogRepository, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := loadActor(c, users)
		if !ok {
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid blog id"})
			return
		}
		commentID := c.Param("commentId")

		blog, err := blogs.FindByID(c.Request.Context(), id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
			return
		}
		if err != nil {
			respondServerError(c, err)
			return
		}

		var target *models.Comment
		for i := range blog.Comments {
			if blog.Comments[i].ID == commentID {
				target = &blog.Comments[i]
				break
			}
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "comment not found"})
			return
		}

		if !policy.CanDeleteComment(actor.ID, actor.Role, target.Author) {
			c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}

		if err := blogs.PullComment(c.Request.Context(), id, commentID); err != nil {
			if err == repository.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "blog not found"})
				return
			}
			respondServerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
