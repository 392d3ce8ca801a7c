package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Content lifecycle status values. Removed is a soft delete: the record
// stays in storage but is excluded from feed and per-user queries.
const (
	ContentStatusProcessing = "processing"
	ContentStatusActive     = "active"
	ContentStatusRemoved    = "removed"
)

type Content struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Creator     primitive.ObjectID   `bson:"creator" json:"creator"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL    string               `bson:"videoUrl" json:"videoUrl"`
	PublicID    string               `bson:"publicId" json:"publicId"`
	Thumbnail   *Thumbnail           `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	Tags        []string             `bson:"tags" json:"tags"`
	Views       int64                `bson:"views" json:"views"`
	Status      string               `bson:"status" json:"status"`
	CreatedAt   int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64                `bson:"updatedAt" json:"updatedAt"`
}

type Thumbnail struct {
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
