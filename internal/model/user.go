package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary reduces a user to the author shape embedded in posts and comments.
func (u User) Summary() Author {
	return Author{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Author is the public summary of a user attached to their posts and comments.
type Author struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarUrl"`
}

// AuthSession is what register-or-login hands back to the client.
type AuthSession struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
