package entity

import "time"

// ModeOfPayment names a payment method such as "card" or "upi"
type ModeOfPayment struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a free-form note attached to a document
type Comment struct {
	ID               int64     `json:"id"`
	ReferenceDoctype string    `json:"reference_doctype"`
	ReferenceName    string    `json:"reference_name"`
	CommentType      string    `json:"comment_type"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
}

// ErrorLog keeps failures that need operator attention
type ErrorLog struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionUser identifies the caller of a request
type SessionUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

// IsWebsiteUser reports whether the user signed up through the public website
func (u *SessionUser) IsWebsiteUser() bool {
	return u != nil && u.UserType == UserTypeWebsite
}
