package model

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review is a user's scored opinion on a title. One per (title, author).
type Review struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TitleID  uint      `json:"-" gorm:"not null;uniqueIndex:idx_review_title_author"`
	Title    *Title    `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	AuthorID uint      `json:"-" gorm:"not null;uniqueIndex:idx_review_title_author"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Score    int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
}

// Comment belongs to a review.
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ReviewID uint      `json:"-" gorm:"not null;index"`
	Review   *Review   `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	AuthorID uint      `json:"-" gorm:"not null;index"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
}

// AuthorName returns the author's username when preloaded.
func (r *Review) AuthorName() string {
	if r.Author == nil {
		return ""
	}
	return r.Author.Username
}

// AuthorName returns the author's username when preloaded.
func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}
