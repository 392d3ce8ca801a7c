package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"amora/database"
	"amora/middleware"
	"amora/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Country  string `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponseUser is the compact user object returned alongside the token.
func registerResponseUser(user models.User) gin.H {
	return gin.H{
		"_id":     user.ID.Hex(),
		"name":    user.Name,
		"email":   user.Email,
		"age":     user.Age,
		"country": user.Country,
	}
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" || req.Age == 0 || req.Country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}
	if !ValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
		return
	}
	if req.Age < 18 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must be at least 18 years old"})
		return
	}
	if req.Age > 120 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Age must be between 18 and 120"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Check if email already exists
	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now().Unix()
	user := models.User{
		ID:                 primitive.NewObjectID(),
		Email:              email,
		Password:           string(hashedPassword),
		Name:               req.Name,
		Age:                req.Age,
		Country:            req.Country,
		Photos:             []models.Photo{},
		Interests:          []string{},
		PartnerPreferences: models.DefaultPartnerPreferences(),
		LastActive:         now,
		Role:               "user",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		// The unique index on email catches a concurrent duplicate register.
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	token, err := middleware.GenerateToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  registerResponseUser(user),
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// Record activity; best effort, the login itself already succeeded.
	database.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastActive": time.Now().Unix(), "isOnline": true}})

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  registerResponseUser(user),
	})
}

// GetOwnProfile returns the caller's profile without password, email or role.
func GetOwnProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user.PublicProfile())
}

// PatchOwnProfile applies a whitelisted partial update to the caller's profile.
func PatchOwnProfile(c *gin.Context) {
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

	if msg := ValidateProfileUpdates(updates, authProfileFields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updated, errMsg, status := applyProfileUpdates(userID, updates)
	if errMsg != "" {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	c.JSON(http.StatusOK, updated.PublicProfile())
}

func Logout(c *gin.Context) {
	userID, ok := callerID(c)
	if ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		database.Users.UpdateOne(ctx, bson.M{"_id": userID},
			bson.M{"$set": bson.M{"isOnline": false, "lastActive": time.Now().Unix()}})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
