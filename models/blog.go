package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type GeoPoint struct {
	Name string  `bson:"name" json:"name"`
	Lat  float64 `bson:"lat" json:"lat"`
	Lng  float64 `bson:"lng" json:"lng"`
}

// Comment is embedded in its parent blog document. Its id is scoped
// to the post and its author never changes after creation.
type Comment struct {
	ID         string        `bson:"_id" json:"id"`
	Author     bson.ObjectID `bson:"author" json:"author"`
	AuthorName string        `bson:"authorName" json:"authorName"`
	Text       string        `bson:"text" json:"text"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

type Blog struct {
	ID        bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author    bson.ObjectID   `bson:"author" json:"author"` // immutable after creation
	Title     string          `bson:"title" json:"title"`
	Subtitle  string          `bson:"subtitle,omitempty" json:"subtitle"`
	Slug      string          `bson:"slug" json:"slug"`
	Body      string          `bson:"body" json:"body"`
	Excerpt   string          `bson:"excerpt,omitempty" json:"excerpt"`
	Tags      []string        `bson:"tags" json:"tags"`
	ImageUrls []string        `bson:"imageUrls" json:"imageUrls"`
	Location  *GeoPoint       `bson:"location,omitempty" json:"location,omitempty"`
	Likes     []bson.ObjectID `bson:"likes" json:"likes"`    // set membership, count is len
	Comments  []Comment       `bson:"comments" json:"comments"` // append order, never re-sorted
	Published bool            `bson:"published" json:"published"`
	Featured  bool            `bson:"featured" json:"featured"`
	Views     int64           `bson:"views" json:"views"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}
