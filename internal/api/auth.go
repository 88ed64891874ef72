package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"regexp"   // Phone/username validation
	"strings"  // String manipulation

	"antidote/internal/domain"
	"antidote/internal/middleware"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// TestOTP is accepted in non-production environments so client builds can be
// exercised without a delivery channel
const TestOTP = "123456"

// maxOTPAttempts invalidates a code after this many failed checks
const maxOTPAttempts = 3

// Request and Response structs
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`                     // Username must be provided
	Password string `json:"password" binding:"required"`                     // Password must be provided
	Role     string `json:"role" binding:"omitempty,oneof=user clinic"`      // Optional role, admin is never self-assigned
	Phone    string `json:"phone"`                                           // Optional phone in E.164 form
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidUsername checks if the username is alphanumeric, 3-30 characters
func isValidUsername(username string) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z][A-Za-z0-9_]{2,29}$`, username)
	return matched
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}

// isValidPhone checks an Indian mobile number with optional +91 prefix
func isValidPhone(phone string) bool {
	matched, _ := regexp.MatchString(`^(\+91)?[6-9]\d{9}$`, phone)
	return matched
}

// RegisterHandler creates a user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be alphanumeric, 3-30 characters"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		if req.Phone != "" && !isValidPhone(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		role := req.Role
		if role == "" {
			role = domain.RoleUser
		}
		// Lowercase username to ensure uniqueness
		user := domain.User{
			Username: strings.ToLower(req.Username),
			Password: string(hash),
			Role:     role,
			Phone:    req.Phone,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User
		if err := db.Where("username = ?", strings.ToLower(req.Username)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// OTP request structs
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"` // Target phone number
}

type VerifyOTPRequest struct {
	Phone       string `json:"phone" binding:"required"` // Phone the code was sent to
	Code        string `json:"code" binding:"required"`  // 6-digit verification code
	FirebaseUID string `json:"firebase_uid"`             // Optional Firebase UID to link
}

// SendOTPHandler generates a verification code for the phone and stores it in
// Redis with a 5-minute TTL. SMS dispatch is out of scope; outside production
// the code is echoed back for client testing.
func SendOTPHandler(rdb *redis.Client, limiter *middleware.PhoneLimiter, isProd bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil || !isValidPhone(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		if !limiter.Allow(req.Phone) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many OTP requests, try again later"})
			return
		}
		code, err := utils.GenerateOTP(req.Phone)
		if err != nil {
			logrus.WithField("phone", req.Phone).Errorf("OTP generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
			return
		}
		ctx := context.Background()
		if err := rdb.Set(ctx, otpKey(req.Phone), code, utils.OTPTTL).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store code"})
			return
		}
		_ = rdb.Del(ctx, otpAttemptsKey(req.Phone)).Err() // Fresh code, fresh attempt budget
		resp := gin.H{"message": "OTP sent"}
		if !isProd {
			resp["code"] = code // Test environments have no SMS channel
		}
		c.JSON(http.StatusOK, resp)
	}
}

// VerifyOTPHandler checks the submitted code, marks the user's phone verified
// and links the Firebase UID when supplied
func VerifyOTPHandler(db *gorm.DB, rdb *redis.Client, isProd bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := context.Background()
		stored, err := rdb.Get(ctx, otpKey(req.Phone)).Result()
		if err == redis.Nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Code expired or never sent"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification unavailable"})
			return
		}
		match := stored == req.Code || (!isProd && req.Code == TestOTP)
		if !match {
			attempts, _ := rdb.Incr(ctx, otpAttemptsKey(req.Phone)).Result()
			if attempts >= maxOTPAttempts {
				// Burn the code after repeated failures
				_ = rdb.Del(ctx, otpKey(req.Phone)).Err()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect code"})
			return
		}
		_ = rdb.Del(ctx, otpKey(req.Phone)).Err()
		_ = rdb.Del(ctx, otpAttemptsKey(req.Phone)).Err()

		updates := map[string]any{"phone": req.Phone, "phone_verified": true}
		if req.FirebaseUID != "" {
			updates["firebase_uid"] = req.FirebaseUID
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Phone verification update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"phone":   req.Phone,
		}).Info("Phone verified")
		c.JSON(http.StatusOK, gin.H{"message": "Phone verified"})
	}
}

func otpKey(phone string) string         { return "otp:" + phone }
func otpAttemptsKey(phone string) string { return "otp:attempts:" + phone }
