package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a blog author or commenter.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	AvatarURL *string   `gorm:"column:avatar_url;size:512" json:"avatarUrl"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments  []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// TableName pins the table name shared with the REST interface.
func (User) TableName() string { return "users" }

// BeforeCreate assigns a UUID and timestamps when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// UserBrief is the author projection embedded in posts and comments.
type UserBrief struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// Brief projects a user onto the fields shown next to content.
func (u User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
