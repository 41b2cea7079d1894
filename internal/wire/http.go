package wire

// SignupRequest is the HTTP POST /auth/signup request body.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the HTTP POST /auth/login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the HTTP PUT /auth/update-profile request body.
type UpdateProfileRequest struct {
	// ProfilePic is the new avatar (data URL or remote URL).
	ProfilePic string `json:"profilePic" binding:"required"`
}

// SendMessageRequest is the HTTP POST /messages/send/:userId request body.
//
// At least one of Text or Image must be set.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// ErrorResponse is the error payload returned by every REST endpoint. Message
// is human-readable and safe to surface as a notification.
type ErrorResponse struct {
	Message string `json:"message"`
}
