package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"amora/database"
	"amora/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// coerce re-decodes a loosely typed JSON value into a model struct.
func coerce(src interface{}, dst interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// applyProfileUpdates writes an already validated update set and returns the
// updated user. Location updates merge into the stored document instead of
// replacing it, so a coordinates-only update keeps the address fields.
func applyProfileUpdates(userID primitive.ObjectID, updates map[string]interface{}) (models.User, string, int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().Unix()}

	for field, value := range updates {
		switch field {
		case "location":
			var current models.User
			if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&current); err != nil {
				return models.User{}, "User not found", http.StatusNotFound
			}
			merged := mergeLocation(current.Location, value)
			set["location"] = merged

		case "photos":
			var photos []models.Photo
			if err := coerce(value, &photos); err != nil {
				return models.User{}, "Invalid photos", http.StatusBadRequest
			}
			for i := range photos {
				if photos[i].ID.IsZero() {
					photos[i].ID = primitive.NewObjectID()
				}
			}
			set["photos"] = photos

		case "videoProfile":
			var video models.VideoProfile
			if err := coerce(value, &video); err != nil {
				return models.User{}, "Invalid video profile", http.StatusBadRequest
			}
			set["videoProfile"] = video

		case "partnerPreferences":
			var prefs models.PartnerPreferences
			if err := coerce(value, &prefs); err != nil {
				return models.User{}, "Invalid partner preferences", http.StatusBadRequest
			}
			set["partnerPreferences"] = prefs

		default:
			set[field] = value
		}
	}

	var updated models.User
	err := database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return models.User{}, "User not found", http.StatusNotFound
	}
	if err != nil {
		log.Printf("[UpdateProfile] database error: %v", err)
		return models.User{}, "Error updating profile", http.StatusInternalServerError
	}

	return updated, "", 0
}

func mergeLocation(current *models.Location, value interface{}) models.Location {
	merged := models.Location{Type: "Point", Coordinates: []float64{0, 0}}
	if current != nil {
		merged = *current
		merged.Type = "Point"
	}

	var incoming models.Location
	if err := coerce(value, &incoming); err != nil {
		return merged
	}
	if len(incoming.Coordinates) == 2 {
		merged.Coordinates = incoming.Coordinates
	}
	if incoming.Address != "" {
		merged.Address = incoming.Address
	}
	if incoming.City != "" {
		merged.City = incoming.City
	}
	if incoming.Country != "" {
		merged.Country = incoming.Country
	}
	return merged
}

// Discover lists candidate users filtered by the caller's partner-preference
// age range, excluding the caller, most recently active first.
func Discover(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	skip, limit := pagination(c, 20)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var me models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&me); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current user"})
		return
	}

	prefs := me.PartnerPreferences
	if prefs == nil {
		prefs = models.DefaultPartnerPreferences()
	}

	filter := bson.M{
		"_id": bson.M{"$ne": userID},
		"age": bson.M{
			"$gte": prefs.AgeRange.Min,
			"$lte": prefs.AgeRange.Max,
		},
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0, "email": 0, "role": 0}).
		SetSort(bson.D{{Key: "lastActive", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := database.Users.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("[Discover] database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	response := make([]map[string]interface{}, len(users))
	for i, u := range users {
		response[i] = u.PublicProfile()
	}

	c.JSON(http.StatusOK, response)
}

// GetUser returns another user's public profile.
func GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user.PublicProfile())
}

// UpdateProfile handles PUT /users/profile with the full mutable-field whitelist.
func UpdateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if msg := ValidateProfileUpdates(updates, userProfileFields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updated, errMsg, status := applyProfileUpdates(userID, updates)
	if errMsg != "" {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	// Own profile keeps the email; the password hash never serializes.
	c.JSON(http.StatusOK, updated)
}

// AddPhoto appends a photo URL to the caller's photo list. The first photo
// becomes the main one.
func AddPhoto(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	photo := models.Photo{
		ID:     primitive.NewObjectID(),
		URL:    req.URL,
		IsMain: len(user.Photos) == 0,
	}

	var updated models.User
	err := database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"photos": photo}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating photos"})
		return
	}

	c.JSON(http.StatusOK, updated.Photos)
}

// DeletePhoto removes a photo by its embedded id.
func DeletePhoto(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	photoID, err := primitive.ObjectIDFromHex(c.Param("photoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err = database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"photos": bson.M{"_id": photoID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting photo"})
		return
	}

	if updated.Photos == nil {
		updated.Photos = []models.Photo{}
	}
	c.JSON(http.StatusOK, updated.Photos)
}

// SetVideoProfile sets or replaces the caller's video profile.
func SetVideoProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	video := models.VideoProfile{URL: req.URL}
	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"videoProfile": video, "updatedAt": time.Now().Unix()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating video profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideoProfile clears the caller's video profile.
func DeleteVideoProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$unset": bson.M{"videoProfile": ""}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting video profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video profile deleted successfully"})
}

// UpdateLocation replaces the caller's coordinates ([longitude, latitude]).
func UpdateLocation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		Coordinates []float64 `json:"coordinates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Coordinates) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates must be [longitude, latitude]"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"location.type":        "Point",
			"location.coordinates": req.Coordinates,
			"lastActive":           time.Now().Unix(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating location"})
		return
	}

	c.JSON(http.StatusOK, updated.PublicProfile())
}
