package domain

// Thread Model: a community discussion thread
type Thread struct {
	ID          uint   `gorm:"primaryKey"`           // Primary key
	UserID      uint   `gorm:"index;not null"`       // Author
	Title       string `gorm:"not null"`             // Thread title
	Content     string `gorm:"not null"`             // Opening post body
	Category    string `gorm:"index"`                // Procedure category the thread belongs to
	IsAnonymous bool   `gorm:"default:false"`        // Hide the author's username
	ViewCount   int64  `gorm:"default:0"`            // Incremented on every read
	ReplyCount  int64  `gorm:"default:0"`            // Mirrors count of child replies
	CreatedAt   int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// Reply Model: a reply within a thread, optionally nested one level
type Reply struct {
	ID            uint   `gorm:"primaryKey"`           // Primary key
	ThreadID      uint   `gorm:"index;not null"`       // Parent thread
	UserID        uint   `gorm:"index;not null"`       // Author
	ParentReplyID *uint  `gorm:"index"`                // Parent reply for one-level nesting
	Content       string `gorm:"not null"`             // Reply body
	IsAnonymous   bool   `gorm:"default:false"`        // Hide the author's username
	CreatedAt     int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
