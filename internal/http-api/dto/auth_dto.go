package dto

// Form payloads for the session pages

// RegisterForm: payload for user registration
type RegisterForm struct {
	Username        string `form:"username" binding:"required,min=3,max=150,alphanum"`
	Email           string `form:"email" binding:"required,email,max=254"`
	Password        string `form:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

// LoginForm: payload for user login
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}
