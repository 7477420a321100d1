package domain

// User is stored in the Users table keyed by user_id. Email is unique,
// username is unique by convention only.
type User struct {
	ID             string  `json:"id" dynamodbav:"user_id" gorm:"column:user_id;primaryKey"`
	Username       string  `json:"username" dynamodbav:"username" gorm:"not null"`
	Email          string  `json:"email" dynamodbav:"email" gorm:"not null"`
	PasswordHash   string  `json:"-" dynamodbav:"password_hash" gorm:"not null"`
	Bio            *string `json:"bio" dynamodbav:"bio,omitempty"`
	ProfilePicture *string `json:"profile_picture" dynamodbav:"profile_picture,omitempty"`
}
