package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"amora/database"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	// Generate throwaway VAPID keys when none are configured so development
	// works out of the box. Production sets them through the environment.
	if os.Getenv("VAPID_PUBLIC_KEY") == "" || os.Getenv("VAPID_PRIVATE_KEY") == "" {
		publicKey, privateKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("Failed to generate VAPID keys: %v", err)
			return
		}
		os.Setenv("VAPID_PUBLIC_KEY", publicKey)
		os.Setenv("VAPID_PRIVATE_KEY", privateKey)
		log.Println("Generated new VAPID keys; set VAPID_PUBLIC_KEY/VAPID_PRIVATE_KEY for production")
	}

	vapidPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
}

func GetVapidPublicKey(c *gin.Context) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if publicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "VAPID public key not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
}

// SubscribePush stores (or replaces) the caller's webpush subscription.
func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pushSub := PushSubscription{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	}

	_, err := database.PushSubs.UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": pushSub},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("Failed to save subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}

// SendPushNotification delivers a webpush message to a user's stored
// subscription, if any. Fire-and-forget; a failed push is only logged.
func SendPushNotification(userID primitive.ObjectID, title, body string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var sub PushSubscription
		err := database.PushSubs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
		if err == mongo.ErrNoDocuments {
			return
		}
		if err != nil {
			log.Printf("Failed to find subscription for user %s: %v", userID.Hex(), err)
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title": title,
			"body":  body,
			"data": map[string]interface{}{
				"timestamp": time.Now().Unix(),
			},
		})
		if err != nil {
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      "mailto:admin@amora.app",
			VAPIDPrivateKey: vapidPrivateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("Failed to send push notification to user %s: %v", userID.Hex(), err)
			// An expired subscription (410) is useless, delete it.
			if resp != nil && resp.StatusCode == http.StatusGone {
				database.PushSubs.DeleteOne(ctx, bson.M{"userId": userID})
			}
			return
		}
		resp.Body.Close()
	}()
}

// SendMessagePush notifies a chat participant about a new message.
func SendMessagePush(senderID, receiverID primitive.ObjectID, messageContent, senderName string) {
	if senderName == "" {
		senderName = "Someone"
	}

	body := messageContent
	if len(body) > 100 {
		body = body[:100] + "..."
	}

	SendPushNotification(receiverID, senderName+" sent a message", body)
}
