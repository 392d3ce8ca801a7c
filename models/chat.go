package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Chat embeds its messages as an ordered, append-only array. A message is
// immutable once written except for the read flag.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []Message            `bson:"messages" json:"messages"`
	LastMessage  int64                `bson:"lastMessage" json:"lastMessage"`
	CreatedAt    int64                `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
