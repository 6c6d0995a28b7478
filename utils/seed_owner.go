package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/trektales/trektalesbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SeedOwnerUser guarantees the single owner account exists so role
// elevation has a root of trust. Upsert only, never overwrites.
func SeedOwnerUser(ctx context.Context, usersCol *mongo.Collection) error {
	email := strings.TrimSpace(os.Getenv("OWNER_EMAIL"))
	pass := os.Getenv("OWNER_PASSWORD")

	if email == "" || pass == "" {
		return fmt.Errorf("missing OWNER_EMAIL or OWNER_PASSWORD env vars")
	}

	hash, err := HashPassword(pass)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}

	now := time.Now().UTC()

	filter := bson.M{"email": email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":          email,
			"name":           "Site Owner",
			"passwordHash":   hash,
			"role":           models.RoleOwner,
			"isGoogle":       false,
			"storiesWritten": 0,
			"photosShared":   0,
			"createdAt":      now,
			"updatedAt":      now,
		},
	}

	opts := options.UpdateOne().SetUpsert(true)

	res, err := usersCol.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("seed owner upsert failed: %w", err)
	}

	if res.UpsertedCount == 1 {
		log.Println("Owner user seeded:", email)
	} else {
		log.Println("Owner user already exists:", email)
	}

	return nil
}
