package domain

// User roles
const (
	RoleUser   = "user"
	RoleClinic = "clinic"
	RoleAdmin  = "admin"
)

// User Model
type User struct {
	ID            uint   `gorm:"primaryKey"`                  // Primary key
	Username      string `gorm:"unique;not null"`             // Unique username
	Password      string `gorm:"not null" json:"-"`           // Hashed password, never serialized
	Role          string `gorm:"default:user"`                // Role: user, clinic or admin
	Phone         string `gorm:"index"`                       // Phone number in E.164 form
	PhoneVerified bool   `gorm:"default:false"`               // Set after OTP verification
	FirebaseUID   string // Firebase UID supplied by the client app
	CreatedAt     int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
