package validation

// RegisterRequest represents a user registration request, sent as JSON or as
// multipart form data alongside an optional profile_picture file.
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64,username"`
	Email    string `json:"email" form:"email" validate:"required,max=120,email"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
