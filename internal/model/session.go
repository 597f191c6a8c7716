package model

import "time"

// AuthSession is the single administrator session. Only one exists at a time.
type AuthSession struct {
	Username        string    `json:"username"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	Token           string    `json:"token,omitempty"`
	LoggedInAt      time.Time `json:"loggedInAt"`
}
