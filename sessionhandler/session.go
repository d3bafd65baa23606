// sessionhandler/session.go
package sessionhandler

import (
	"github.com/sessionkit/go-token-session/tokencodec"
)

// TokenPair holds the two bearer credentials of a session. It is an immutable value:
// refresh replaces the whole pair, never a single field. Equality is structural.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// State tags the session classification.
type State int

const (
	// StateAbsent means no tokens are cached or stored.
	StateAbsent State = iota
	// StateExpired means tokens are present but the access token's expiry is at or before
	// now, or the token fails to decode.
	StateExpired
	// StateValid means tokens are present and the access token's expiry is strictly in
	// the future.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateExpired:
		return "expired"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Session is the classified view of the current token pair. Pair is the zero value when
// State is StateAbsent.
type Session struct {
	State State
	Pair  TokenPair
}

// Classify derives the session state from a token pair. A nil pair is Absent; otherwise
// the state follows the access token's expiry. The tag is a pure function of the pair at
// evaluation time, so callers re-classify whenever validity materially matters instead of
// trusting a stale tag.
func Classify(pair *TokenPair) Session {
	if pair == nil {
		return Session{State: StateAbsent}
	}
	if tokencodec.IsExpired(pair.AccessToken) {
		return Session{State: StateExpired, Pair: *pair}
	}
	return Session{State: StateValid, Pair: *pair}
}
