package models

// MenuItem is one entry of the site navigation.
type MenuItem struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Item string `json:"item" gorm:"uniqueIndex;size:300;not null"`
	Link string `json:"link" gorm:"uniqueIndex;size:300;not null"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
