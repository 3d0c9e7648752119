package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID         int64               `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string              `json:"name" gorm:"size:200;not null"`
	Web        *string             `json:"web,omitempty" gorm:"size:300"`
	Price      decimal.NullDecimal `json:"price" gorm:"type:decimal(8,2)"`
	PictureKey *string             `json:"picture_key,omitempty" gorm:"size:300"` // storage key, URL is derived on read
	IsFavorite bool                `json:"is_favorite" gorm:"not null;default:false;index"`
	OwnerID    *string             `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt  time.Time           `json:"created_at" gorm:"autoCreateTime;index"`

	// association
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
}

func (Book) TableName() string {
	return "books"
}

// OwnedBy reports whether userID is the recorded owner.
func (b *Book) OwnedBy(userID string) bool {
	return b.OwnerID != nil && userID != "" && *b.OwnerID == userID
}
