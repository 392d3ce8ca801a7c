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

// chatWithParticipants is the aggregation shape for chat listings.
type chatWithParticipants struct {
	models.Chat     `bson:",inline"`
	ParticipantDocs []models.User `bson:"participantDocs"`
}

func chatResponse(chat models.Chat, docs []models.User) map[string]interface{} {
	participants := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		participants[i] = doc.Summary()
	}

	return map[string]interface{}{
		"_id":          chat.ID.Hex(),
		"participants": participants,
		"lastMessage":  chat.LastMessage,
		"createdAt":    chat.CreatedAt,
	}
}

// ListChats returns the caller's conversations with participant summaries,
// most recently active first. Message bodies stay out of the listing.
func ListChats(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "participants", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "participants"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "participantDocs"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "messages", Value: 0}}}},
	}

	cursor, err := database.Chats.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[ListChats] aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}
	defer cursor.Close(ctx)

	var chats []chatWithParticipants
	if err := cursor.All(ctx, &chats); err != nil {
		log.Printf("[ListChats] decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode chats"})
		return
	}

	response := make([]map[string]interface{}, len(chats))
	for i, chat := range chats {
		response[i] = chatResponse(chat.Chat, chat.ParticipantDocs)
	}

	c.JSON(http.StatusOK, response)
}

// GetOrCreateChat finds the conversation for the caller and the given user,
// creating it lazily. Idempotent on the participant pair.
func GetOrCreateChat(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if otherID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot start a chat with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	participants := []primitive.ObjectID{userID, otherID}
	filter := bson.M{
		"participants": bson.M{"$all": participants, "$size": 2},
	}

	var chat models.Chat
	err = database.Chats.FindOne(ctx, filter, options.FindOne().
		SetProjection(bson.M{"messages": 0})).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		// Make sure the other participant exists before creating.
		count, countErr := database.Users.CountDocuments(ctx, bson.M{"_id": otherID})
		if countErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		now := time.Now().Unix()
		chat = models.Chat{
			ID:           primitive.NewObjectID(),
			Participants: participants,
			Messages:     []models.Message{},
			LastMessage:  now,
			CreatedAt:    now,
		}
		if _, err := database.Chats.InsertOne(ctx, chat); err != nil {
			log.Printf("[GetOrCreateChat] insert error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": chat.Participants}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}
	defer cursor.Close(ctx)

	var docs []models.User
	if err := cursor.All(ctx, &docs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode participants"})
		return
	}

	c.JSON(http.StatusOK, chatResponse(chat, docs))
}

// SendMessage appends a message to the conversation and bumps its
// last-message timestamp. Live fan-out happens separately through the hub;
// this path is the persistence half of a send.
func SendMessage(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Membership check doubles as the existence check; outsiders see 404.
	var chat models.Chat
	err = database.Chats.FindOne(ctx,
		bson.M{"_id": chatID, "participants": userID},
		options.FindOne().SetProjection(bson.M{"messages": 0}),
	).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify chat access"})
		return
	}

	message := models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    userID,
		Content:   req.Content,
		Read:      false,
		CreatedAt: time.Now().Unix(),
	}

	_, err = database.Chats.UpdateOne(
		ctx,
		bson.M{"_id": chatID},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"lastMessage": message.CreatedAt},
		},
	)
	if err != nil {
		log.Printf("[SendMessage] update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	var sender models.User
	database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&sender)

	// Best-effort push to the other participants; offline users also pick
	// the message up on their next history fetch.
	for _, participantID := range chat.Participants {
		if participantID != userID {
			SendMessagePush(userID, participantID, message.Content, sender.Name)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":       message.ID.Hex(),
		"chatId":    chatID.Hex(),
		"sender":    sender.Summary(),
		"content":   message.Content,
		"read":      message.Read,
		"createdAt": message.CreatedAt,
	})
}

// MarkAsRead flips the read flag on every message the caller did not send.
func MarkAsRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Chats.CountDocuments(ctx, bson.M{"_id": chatID, "participants": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify chat access"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	_, err = database.Chats.UpdateOne(
		ctx,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"messages.$[m].read": true}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"m.sender": bson.M{"$ne": userID},
				"m.read":   false,
			}},
		}),
	)
	if err != nil {
		log.Printf("[MarkAsRead] update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}

// GetMessages pages through the conversation's embedded message array in
// insertion order.
func GetMessages(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	skip, limit := pagination(c, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var chat models.Chat
	err = database.Chats.FindOne(
		ctx,
		bson.M{"_id": chatID, "participants": userID},
		options.FindOne().SetProjection(bson.M{
			"messages": bson.M{"$slice": bson.A{skip, limit}},
		}),
	).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	messages := chat.Messages
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, messages)
}
