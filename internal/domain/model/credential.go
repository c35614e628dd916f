package model

import "time"

// AdminUserID is the reserved owner of the administrative credential used
// for jobs that carry no user id.
const AdminUserID = "admin"

// Credential is an access token for the provider API, owned by one user or
// by the administrative account.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the token is expired at now, with skew applied
// by the caller.
func (c *Credential) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
