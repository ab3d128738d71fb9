package domain

// User.Password holds the stored credential, never the raw input unless the
// plain verifier is configured.
type User struct {
	Email    string
	Name     string
	Password string
}
