package models

import "time"

// Session is the persisted authentication blob. Expiry is epoch seconds as
// issued by the backend token endpoint.
type Session struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ExpiresAt converts the epoch expiry into a time.Time.
func (s Session) ExpiresAt() time.Time {
	return time.Unix(s.Expiry, 0)
}

// ExpiredAt reports whether the session is stale at the given instant.
func (s Session) ExpiredAt(now time.Time) bool {
	return s.Expiry != 0 && !s.ExpiresAt().After(now)
}
