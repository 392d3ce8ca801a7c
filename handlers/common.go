package handlers

import (
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var vapidPrivateKey string

// PushSubscription ties a stored webpush subscription to a user.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// callerID extracts the authenticated user's ObjectID from the gin context.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pagination reads page/limit query params with the given default page size.
// Page numbering starts at 1.
func pagination(c *gin.Context, defaultLimit int) (skip int64, limit int64) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || size < 1 {
		size = defaultLimit
	}
	return int64((page - 1) * size), int64(size)
}
