package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups titles by kind of work (film, book, music).
type Category struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

// Genre is a free-form classification; a title may have several.
type Genre struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

// Title is a reviewable work.
type Title struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"index"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  *uint     `json:"-" gorm:"index"`
	Category    *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is the average review score, computed at query time.
	Rating decimal.NullDecimal `json:"rating" gorm:"->;-:migration"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
