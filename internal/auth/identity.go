package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google", "oidc"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // email returned by the provider
	EmailVerified  bool   // whether the provider asserts email ownership
	Name           string // display name, may be empty
}
