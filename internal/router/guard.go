package router

// Authenticator reports whether a user is signed in
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision is the guard's verdict. Allow and Redirect are mutually exclusive.
type Decision struct {
	Allow    bool
	Redirect string
}

// GuardFunc decides whether navigation into a route may proceed
type GuardFunc func(Route) Decision

// Guard allows navigation when auth reports a signed-in user, and otherwise
// denies it with a redirect to the login screen.
func Guard(auth Authenticator) GuardFunc {
	return func(Route) Decision {
		if auth.IsAuthenticated() {
			return Decision{Allow: true}
		}
		return Decision{Redirect: LoginPath}
	}
}
