package domain

import (
	"fmt"
	"time"
)

// Credential is the current access token together with the fields decoded
// from it. Owned exclusively by the session manager: installed on login or
// silent bootstrap, replaced on every refresh, cleared on logout.
type Credential struct {
	AccessToken string
	Subject     string
	ExpiresAt   time.Time
}

// Expired reports whether the access token is past its decoded expiry.
func (c Credential) Expired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Identity partitions cart storage: the anonymous guest, or one signed-in
// user. It is derived from the current credential and never cached beyond
// the credential's lifetime.
type Identity struct {
	UserID string
}

// Anonymous is the guest identity.
var Anonymous = Identity{}

func UserIdentity(id string) Identity {
	return Identity{UserID: id}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// Key returns the storage partition key for this identity.
func (i Identity) Key() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return "user:" + i.UserID
}

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return fmt.Sprintf("user(%s)", i.UserID)
}
