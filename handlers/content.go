package handlers

import (
	"context"
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

type CreateContentRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	VideoURL    string            `json:"videoUrl" binding:"required"`
	PublicID    string            `json:"publicId" binding:"required"`
	Thumbnail   *models.Thumbnail `json:"thumbnail"`
	Tags        []string          `json:"tags"`
}

// contentWithCreator is the aggregation shape for feed queries.
type contentWithCreator struct {
	models.Content `bson:",inline"`
	CreatorDoc     *models.User `bson:"creatorDoc"`
}

func contentResponse(item models.Content, creator *models.User) map[string]interface{} {
	creatorMap := map[string]interface{}{
		"_id":    item.Creator.Hex(),
		"name":   "Unknown User",
		"photos": []models.Photo{},
	}
	if creator != nil {
		creatorMap = creator.Summary()
	}

	likes := make([]string, len(item.Likes))
	for i, id := range item.Likes {
		likes[i] = id.Hex()
	}
	comments := item.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	response := map[string]interface{}{
		"_id":         item.ID.Hex(),
		"creator":     creatorMap,
		"title":       item.Title,
		"description": item.Description,
		"videoUrl":    item.VideoURL,
		"publicId":    item.PublicID,
		"likes":       likes,
		"comments":    comments,
		"tags":        tags,
		"views":       item.Views,
		"status":      item.Status,
		"createdAt":   item.CreatedAt,
		"updatedAt":   item.UpdatedAt,
	}
	if item.Thumbnail != nil {
		response["thumbnail"] = item.Thumbnail
	}
	return response
}

func activeContentPage(c *gin.Context, match bson.D, defaultLimit int) ([]map[string]interface{}, bool) {
	skip, limit := pagination(c, defaultLimit)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "creator"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creatorDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$creatorDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Content.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[Content] aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch content"})
		return nil, false
	}
	defer cursor.Close(ctx)

	var items []contentWithCreator
	if err := cursor.All(ctx, &items); err != nil {
		log.Printf("[Content] decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode content"})
		return nil, false
	}

	response := make([]map[string]interface{}, len(items))
	for i, item := range items {
		response[i] = contentResponse(item.Content, item.CreatorDoc)
	}
	return response, true
}

// Feed lists active content, newest first.
func Feed(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	response, ok := activeContentPage(c,
		bson.D{{Key: "status", Value: models.ContentStatusActive}}, 10)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetUserContent lists one creator's active content, newest first.
func GetUserContent(c *gin.Context) {
	creatorID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response, ok := activeContentPage(c, bson.D{
		{Key: "creator", Value: creatorID},
		{Key: "status", Value: models.ContentStatusActive},
	}, 10)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response)
}

func CreateContent(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().Unix()
	item := models.Content{
		ID:          primitive.NewObjectID(),
		Creator:     userID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		PublicID:    req.PublicID,
		Thumbnail:   req.Thumbnail,
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		Tags:        req.Tags,
		Status:      models.ContentStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if _, err := database.Content.InsertOne(ctx, item); err != nil {
		log.Printf("[CreateContent] insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create content"})
		return
	}

	var creator models.User
	database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&creator)

	c.JSON(http.StatusCreated, contentResponse(item, &creator))
}

// ToggleLike flips the caller's membership in the content's like set and
// returns the updated content.
func ToggleLike(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	contentID, err := primitive.ObjectIDFromHex(c.Param("contentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var item models.Content
	err = database.Content.FindOne(ctx, bson.M{"_id": contentID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch content"})
		return
	}

	liked := false
	for _, id := range item.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}

	var updated models.Content
	err = database.Content.FindOneAndUpdate(
		ctx,
		bson.M{"_id": contentID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	var creator models.User
	database.Users.FindOne(ctx, bson.M{"_id": updated.Creator}).Decode(&creator)

	c.JSON(http.StatusOK, contentResponse(updated, &creator))
}

// AddComment appends a comment and returns it with the author's summary.
func AddComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	contentID, err := primitive.ObjectIDFromHex(c.Param("contentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Text:      req.Text,
		CreatedAt: time.Now().Unix(),
	}

	result, err := database.Content.UpdateOne(
		ctx,
		bson.M{"_id": contentID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	var author models.User
	database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&author)

	c.JSON(http.StatusCreated, gin.H{
		"_id":       comment.ID.Hex(),
		"user":      author.Summary(),
		"text":      comment.Text,
		"createdAt": comment.CreatedAt,
	})
}

// DeleteContent soft-deletes: status flips to removed, the record stays.
// A non-owner gets the same 404 as a missing id.
func DeleteContent(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	contentID, err := primitive.ObjectIDFromHex(c.Param("contentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Content.UpdateOne(
		ctx,
		bson.M{"_id": contentID, "creator": userID},
		bson.M{"$set": bson.M{
			"status":    models.ContentStatusRemoved,
			"updatedAt": time.Now().Unix(),
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove content"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content removed successfully"})
}
