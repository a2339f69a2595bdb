package auth

// Identity is the authenticated caller, taken from a verified token and passed
// explicitly to every operation that needs to know who is acting.
type Identity struct {
	UserID   uint
	Username string
}
