package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Email              string              `bson:"email" json:"email,omitempty"`
	Password           string              `bson:"password" json:"-"`
	Name               string              `bson:"name" json:"name"`
	Bio                string              `bson:"bio,omitempty" json:"bio,omitempty"`
	Age                int                 `bson:"age,omitempty" json:"age,omitempty"`
	Gender             string              `bson:"gender,omitempty" json:"gender,omitempty"` // male, female, other
	Country            string              `bson:"country,omitempty" json:"country,omitempty"`
	Location           *Location           `bson:"location,omitempty" json:"location,omitempty"`
	Photos             []Photo             `bson:"photos" json:"photos"`
	VideoProfile       *VideoProfile       `bson:"videoProfile,omitempty" json:"videoProfile,omitempty"`
	Interests          []string            `bson:"interests" json:"interests"`
	RelationshipGoals  string              `bson:"relationshipGoals,omitempty" json:"relationshipGoals,omitempty"` // casual, serious, marriage, friendship
	PartnerPreferences *PartnerPreferences `bson:"partnerPreferences,omitempty" json:"partnerPreferences,omitempty"`
	LastActive         int64               `bson:"lastActive" json:"lastActive"`
	IsOnline           bool                `bson:"isOnline" json:"isOnline"`
	Role               string              `bson:"role" json:"role,omitempty"` // user, admin
	CreatedAt          int64               `bson:"createdAt" json:"createdAt"`
	UpdatedAt          int64               `bson:"updatedAt" json:"updatedAt"`
}

// Location is stored GeoJSON-style so the 2dsphere index on users.location works.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	Country     string    `bson:"country,omitempty" json:"country,omitempty"`
}

type Photo struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	URL    string             `bson:"url" json:"url"`
	IsMain bool               `bson:"isMain" json:"isMain"`
}

type VideoProfile struct {
	URL string `bson:"url" json:"url"`
}

type AgeRange struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

type PartnerPreferences struct {
	AgeRange    AgeRange `bson:"ageRange" json:"ageRange"`
	Gender      string   `bson:"gender,omitempty" json:"gender,omitempty"` // male, female, other, any
	MaxDistance int      `bson:"maxDistance,omitempty" json:"maxDistance,omitempty"`
}

// PublicProfile strips the fields that must never leave the server for
// another user's benefit: password hash, email and role.
func (u User) PublicProfile() map[string]interface{} {
	photos := u.Photos
	if photos == nil {
		photos = []Photo{}
	}
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}

	profile := map[string]interface{}{
		"_id":        u.ID.Hex(),
		"name":       u.Name,
		"bio":        u.Bio,
		"age":        u.Age,
		"gender":     u.Gender,
		"country":    u.Country,
		"photos":     photos,
		"interests":  interests,
		"lastActive": u.LastActive,
		"isOnline":   u.IsOnline,
		"createdAt":  u.CreatedAt,
	}
	if u.Location != nil {
		profile["location"] = u.Location
	}
	if u.VideoProfile != nil {
		profile["videoProfile"] = u.VideoProfile
	}
	if u.RelationshipGoals != "" {
		profile["relationshipGoals"] = u.RelationshipGoals
	}
	if u.PartnerPreferences != nil {
		profile["partnerPreferences"] = u.PartnerPreferences
	}
	return profile
}

// Summary is the compact shape embedded in feed items, comments and chat
// participant lists.
func (u User) Summary() map[string]interface{} {
	photos := u.Photos
	if photos == nil {
		photos = []Photo{}
	}
	return map[string]interface{}{
		"_id":        u.ID.Hex(),
		"name":       u.Name,
		"photos":     photos,
		"lastActive": u.LastActive,
	}
}

func DefaultPartnerPreferences() *PartnerPreferences {
	return &PartnerPreferences{
		AgeRange:    AgeRange{Min: 18, Max: 50},
		Gender:      "any",
		MaxDistance: 100,
	}
}
