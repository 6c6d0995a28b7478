package repository

import (
	"context"
	"errors"
	"time"

	"github.com/trektales/trektalesbackend/database"
	"github.com/trektales/trektalesbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type mongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository() UserRepository {
	return &mongoUserRepository{col: database.OpenCollection("users")}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, user)
	return err
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) UpdateFields(ctx context.Context, id bson.ObjectID, set bson.M) error {
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

func (r *mongoUserRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	return r.UpdateFields(ctx, id, bson.M{"refreshToken": token})
}

func (r *mongoUserRepository) SetRole(ctx context.Context, id bson.ObjectID, role models.Role) error {
	return r.UpdateFields(ctx, id, bson.M{"role": role})
}

func (r *mongoUserRepository) BumpCounters(ctx context.Context, id bson.ObjectID, stories, photos int) error {
	inc := bson.M{}
	if stories != 0 {
		inc["storiesWritten"] = stories
	}
	if photos != 0 {
		inc["photosShared"] = photos
	}
	if len(inc) == 0 {
		return nil
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": inc})
	return err
}

func (r *mongoUserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
