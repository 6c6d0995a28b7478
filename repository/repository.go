package repository

import (
	"context"
	"errors"

	"github.com/trektales/trektalesbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var ErrNotFound = errors.New("not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, set bson.M) error
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	SetRole(ctx context.Context, id bson.ObjectID, role models.Role) error
	// BumpCounters adjusts the advisory display counters; callers treat
	// failures as non-fatal.
	BumpCounters(ctx context.Context, id bson.ObjectID, stories, photos int) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type BlogListFilter struct {
	Search    string
	Tag       string
	Author    *bson.ObjectID
	Published *bool
	Featured  *bool
	Page      int
	Limit     int
}

// BlogRepository exposes only atomic field-level mutations on the blog
// document. Likes and comments are $addToSet/$pull/$push operations,
// never a whole-document rewrite.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error)
	// FindByIDAndBumpViews increments the view counter on every call;
	// repeated reads by the same viewer each count.
	FindByIDAndBumpViews(ctx context.Context, id bson.ObjectID) (*models.Blog, error)
	List(ctx context.Context, filter BlogListFilter) ([]models.Blog, int64, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, set bson.M) error
	Delete(ctx context.Context, id bson.ObjectID) error
	AddLike(ctx context.Context, blogID, userID bson.ObjectID) error
	RemoveLike(ctx context.Context, blogID, userID bson.ObjectID) error
	PushComment(ctx context.Context, blogID bson.ObjectID, comment models.Comment) error
	PullComment(ctx context.Context, blogID bson.ObjectID, commentID string) error
	// DeleteByAuthor removes every post the author owns and returns the
	// removed posts so callers can clean up uploaded images.
	DeleteByAuthor(ctx context.Context, author bson.ObjectID) ([]models.Blog, error)
	// PullCommentsByAuthor removes the author's comments from all other
	// posts, leaving sibling comments in place.
	PullCommentsByAuthor(ctx context.Context, author bson.ObjectID) error
}
