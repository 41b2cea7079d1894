package wire

// Message is a persisted chat message. The id and createdAt fields are
// assigned by the server on persistence; clients treat records as immutable.
type Message struct {
	// ID is the server-assigned message id.
	ID string `json:"id"`
	// SenderID is the author's user id.
	SenderID string `json:"senderId"`
	// ReceiverID is the recipient's user id.
	ReceiverID string `json:"receiverId"`
	// Text is the message body. May be empty when Image is set.
	Text string `json:"text"`
	// Image is an optional image attachment (data URL or remote URL).
	Image string `json:"image,omitempty"`
	// CreatedAt is the persistence timestamp in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// User is the public view of an account returned by the REST API.
type User struct {
	// ID is the account id.
	ID string `json:"id"`
	// FullName is the display name.
	FullName string `json:"fullName"`
	// Email is the login email.
	Email string `json:"email"`
	// ProfilePic is the avatar URL. Empty when unset.
	ProfilePic string `json:"profilePic,omitempty"`
	// CreatedAt is the account creation timestamp in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}
