package dto

// RatingForm is the star picker on the detail page
type RatingForm struct {
	Score int `form:"score" binding:"required,oneof=1 2 3 4 5"`
}

// RatingChoices lists the selectable scores, lowest first.
var RatingChoices = []int{1, 2, 3, 4, 5}
