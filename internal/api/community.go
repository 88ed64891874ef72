package api

import (
	"net/http" // HTTP status codes
	"strings"  // Input trimming

	"antidote/internal/domain"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

type CreateThreadRequest struct {
	Title       string `json:"title" binding:"required"`   // Thread title
	Content     string `json:"content" binding:"required"` // Opening post
	Category    string `json:"category"`                   // Procedure category
	IsAnonymous bool   `json:"is_anonymous"`               // Hide author
}

// CreateThreadHandler opens a new discussion thread
func CreateThreadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateThreadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
			return
		}
		thread := domain.Thread{
			UserID:      userID.(uint),
			Title:       strings.TrimSpace(req.Title),
			Content:     req.Content,
			Category:    strings.ToLower(req.Category),
			IsAnonymous: req.IsAnonymous,
		}
		if err := db.Create(&thread).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create thread"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Thread created", "thread": thread})
	}
}

// ListThreadsHandler pages threads, newest first, with category filter
func ListThreadsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.Thread{})
		if cat := strings.ToLower(c.Query("category")); cat != "" {
			query = query.Where("category = ?", cat)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count threads"})
			return
		}
		var threads []domain.Thread
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&threads).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"threads":     threads,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		})
	}
}

// GetThreadHandler returns one thread with its replies and bumps the view count
func GetThreadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var thread domain.Thread
		if err := db.First(&thread, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
			return
		}
		// Counter update rides the same statement, not a read-then-write
		if err := db.Model(&thread).
			Update("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			logrus.Warnf("Failed to bump view count for thread %d: %v", thread.ID, err)
		}
		var replies []domain.Reply
		if err := db.Where("thread_id = ?", thread.ID).Order("created_at").Find(&replies).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"thread": thread, "replies": replies})
	}
}

type CreateReplyRequest struct {
	Content       string `json:"content" binding:"required"` // Reply body
	ParentReplyID *uint  `json:"parent_reply_id"`            // Optional parent for nesting
	IsAnonymous   bool   `json:"is_anonymous"`               // Hide author
}

// CreateReplyHandler adds a reply and maintains the thread's reply_count in
// the same transaction
func CreateReplyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateReplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var thread domain.Thread
		if err := db.First(&thread, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
			return
		}
		// Only one level of nesting: the parent must be a top-level reply of
		// this thread
		if req.ParentReplyID != nil {
			var parent domain.Reply
			if err := db.Where("id = ? AND thread_id = ?", *req.ParentReplyID, thread.ID).First(&parent).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Parent reply not found in thread"})
				return
			}
			if parent.ParentReplyID != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Replies nest only one level deep"})
				return
			}
		}
		reply := domain.Reply{
			ThreadID:      thread.ID,
			UserID:        userID.(uint),
			ParentReplyID: req.ParentReplyID,
			Content:       req.Content,
			IsAnonymous:   req.IsAnonymous,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&reply).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Thread{}).Where("id = ?", thread.ID).
				Update("reply_count", gorm.Expr("reply_count + 1")).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"thread_id": thread.ID,
				"user_id":   userID,
				"error":     err.Error(),
			}).Error("Reply creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Reply created", "reply": reply})
	}
}

// DeleteReplyHandler removes the author's own reply (or any reply for admins)
// and decrements the thread's reply_count in the same transaction. Child
// replies go with the parent.
func DeleteReplyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		role, _ := c.Get("userRole")
		var reply domain.Reply
		if err := db.Where("id = ? AND thread_id = ?", c.Param("reply_id"), c.Param("id")).First(&reply).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reply not found"})
			return
		}
		if reply.UserID != userID.(uint) && role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your reply"})
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var removed int64 = 1
			// Children of a top-level reply are deleted with it
			if reply.ParentReplyID == nil {
				res := tx.Where("parent_reply_id = ?", reply.ID).Delete(&domain.Reply{})
				if res.Error != nil {
					return res.Error
				}
				removed += res.RowsAffected
			}
			if err := tx.Delete(&reply).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Thread{}).Where("id = ?", reply.ThreadID).
				Update("reply_count", gorm.Expr("reply_count - ?", removed)).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reply"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reply deleted"})
	}
}
