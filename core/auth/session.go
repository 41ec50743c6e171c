package auth

// SessionProvider reports the identity an operation should run as.
// The second return value is false when there is no active session.
type SessionProvider interface {
	CurrentUserID() (int64, bool)
}

// StaticSession is a fixed identity, used by per-user library stores:
// the store for user N always acts as user N.
type StaticSession int64

func (s StaticSession) CurrentUserID() (int64, bool) {
	if s <= 0 {
		return 0, false
	}
	return int64(s), true
}

// NoSession is a provider with no identity, for signed-out state.
var NoSession SessionProvider = StaticSession(0)
