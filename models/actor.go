package models

// Actor is the resolved identity of the current caller, threaded explicitly
// into every service operation. The core never sees raw credentials, only the
// alias and the verification flag resolved by the claims provider.
type Actor struct {
	AliasID             string
	EligibilityVerified bool
}
