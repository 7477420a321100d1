package domain

import "time"

// TimestampLayout is the fixed-width UTC ISO-8601 form of Tweet.CreatedAt.
// Fixed width keeps lexical order equal to chronological order, which the
// store indexes rely on.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Tweet is stored in the Tweets table under the composite key
// (tweet_id, created_at). Username is copied from the author at creation.
type Tweet struct {
	ID        string `json:"id" dynamodbav:"tweet_id" gorm:"column:tweet_id;primaryKey"`
	CreatedAt string `json:"created_at" dynamodbav:"created_at" gorm:"column:created_at;primaryKey"`
	UserID    string `json:"user_id" dynamodbav:"user_id" gorm:"not null"`
	Username  string `json:"username" dynamodbav:"username" gorm:"not null"`
	Text      string `json:"text" dynamodbav:"text" gorm:"not null"`
}

// FormatTimestamp renders t in TimestampLayout after converting to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MaxTweetLength is counted in characters, not bytes.
const MaxTweetLength = 280
