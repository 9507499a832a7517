package domain

import "time"

// Session is an issued authentication token and its expiry.
type Session struct {
	Token           string
	TokenExpiration time.Time
}

// AuthCapabilities reports which optional auth features the installation
// supports.
type AuthCapabilities struct {
	InviteUser     bool
	ForgotPassword bool
}
