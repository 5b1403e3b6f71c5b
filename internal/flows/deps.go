package flows

// Deps groups flow dependency sets. The Guard builds this once and delegates
// navigation and logout calls to the matching flow implementation.
type Deps struct {
	Decide DecideDeps
	Logout LogoutDeps
}
