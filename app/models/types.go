package models

import "time"

// User is an account that can publish posts, comment and follow other users.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username" validate:"required,min=3,max=150,username,notreserved"`
	Email        string    `gorm:"size:254" json:"email,omitempty" validate:"omitempty,email,max=254"`
	FirstName    string    `gorm:"size:150" json:"first_name,omitempty" validate:"max=150"`
	LastName     string    `gorm:"size:150" json:"last_name,omitempty" validate:"max=150"`
	PasswordHash string    `gorm:"size:100;not null" json:"-" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
}

// Group is a category posts can be filed under.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug        string `gorm:"size:50;uniqueIndex;not null" json:"slug" validate:"required,max=50,slug"`
	Description string `gorm:"type:text;not null" json:"description"`
}

// Post is a blog entry written by a single author.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required"`
	PubDate  time.Time `gorm:"column:pub_date;not null;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty" validate:"-"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group,omitempty" validate:"-"`
	Image    string    `gorm:"size:255" json:"image,omitempty" validate:"max=255"`
}

// Comment is a reply to a post. PostID is cleared when the post is deleted.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   *uint     `gorm:"index" json:"post_id,omitempty"`
	Post     *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-" validate:"-"`
	AuthorID uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty" validate:"-"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required"`
	Created  time.Time `gorm:"not null;index" json:"created"`
	Updated  time.Time `gorm:"autoUpdateTime" json:"updated"`
	Active   bool      `gorm:"not null;default:true" json:"active"`
}

// Follow is a directed edge: User follows Author.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follows_user_author" json:"user_id" validate:"required"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" validate:"-"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follows_user_author;index" json:"author_id" validate:"required"`
	Author    *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" validate:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}}
}
