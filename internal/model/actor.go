package model

// Actor is the authenticated caller of an operation, as resolved by the
// auth middleware. A zero Actor is an anonymous visitor.
type Actor struct {
	// UID is the identity-provider uid, "" for anonymous visitors.
	UID string
	// UserID is the platform user id carried in the token claims, nil
	// when the caller has no platform account.
	UserID *uint64
	// Admin is true when the caller can administer contact messages.
	Admin bool
}

// Owns reports whether the actor owns the given message.
func (a Actor) Owns(m *ContactMessage) bool {
	return a.UserID != nil && m.OwnerID != nil && *a.UserID == *m.OwnerID
}
