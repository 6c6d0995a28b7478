package repository

import (
	"context"
	"errors"
	"time"

	"github.com/trektales/trektalesbackend/database"
	"github.com/trektales/trektalesbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoBlogRepository struct {
	col *mongo.Collection
}

func NewMongoBlogRepository() BlogRepository {
	return &mongoBlogRepository{col: database.OpenCollection("blogs")}
}

func (r *mongoBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if blog.ID.IsZero() {
		blog.ID = bson.NewObjectID()
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if blog.ImageUrls == nil {
		blog.ImageUrls = []string{}
	}
	if blog.Likes == nil {
		blog.Likes = []bson.ObjectID{}
	}
	if blog.Comments == nil {
		blog.Comments = []models.Comment{}
	}
	_, err := r.col.InsertOne(ctx, blog)
	return err
}

func (r *mongoBlogRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error) {
	var blog models.Blog
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&blog); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

func (r *mongoBlogRepository) FindByIDAndBumpViews(ctx context.Context, id bson.ObjectID) (*models.Blog, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog models.Blog
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&blog)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

func (r *mongoBlogRepository) List(ctx context.Context, f BlogListFilter) ([]models.Blog, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			bson.M{"excerpt": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Author != nil {
		filter["author"] = *f.Author
	}
	if f.Published != nil {
		filter["published"] = *f.Published
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	skip := int64((f.Page - 1) * f.Limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(f.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	blogs := make([]models.Blog, 0)
	for cursor.Next(ctx) {
		var b models.Blog
		if err := cursor.Decode(&b); err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}

func (r *mongoBlogRepository) UpdateFields(ctx context.Context, id bson.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) AddLike(ctx context.Context, blogID, userID bson.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, blogID, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) RemoveLike(ctx context.Context, blogID, userID bson.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, blogID, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) PushComment(ctx context.Context, blogID bson.ObjectID, comment models.Comment) error {
	res, err := r.col.UpdateByID(ctx, blogID, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) PullComment(ctx context.Context, blogID bson.ObjectID, commentID string) error {
	res, err := r.col.UpdateByID(ctx, blogID, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) DeleteByAuthor(ctx context.Context, author bson.ObjectID) ([]models.Blog, error) {
	cursor, err := r.col.Find(ctx, bson.M{"author": author})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	blogs := make([]models.Blog, 0)
	for cursor.Next(ctx) {
		var b models.Blog
		if err := cursor.Decode(&b); err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if _, err := r.col.DeleteMany(ctx, bson.M{"author": author}); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (r *mongoBlogRepository) PullCommentsByAuthor(ctx context.Context, author bson.ObjectID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"comments.author": author},
		bson.M{"$pull": bson.M{"comments": bson.M{"author": author}}},
	)
	return err
}
