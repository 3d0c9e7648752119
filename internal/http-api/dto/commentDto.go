package dto

import (
	"time"

	"bookex/internal/http-api/models"
)

// CommentForm for appending a comment
type CommentForm struct {
	Content string `form:"content" binding:"required,max=2000"`
}

// CommentView for the comment list on the detail page
type CommentView struct {
	ID          int64
	Author      string
	AuthorTitle string
	Content     string
	CreatedAt   time.Time
}

// FromModelToCommentView converts a Comment model to CommentView
func FromModelToCommentView(comment *models.Comment) CommentView {
	v := CommentView{
		ID:          comment.ID,
		AuthorTitle: comment.AuthorTitle(),
		Content:     comment.Content,
		CreatedAt:   comment.CreatedAt,
	}
	if comment.User != nil {
		v.Author = comment.User.Username
	}
	return v
}
