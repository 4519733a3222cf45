package feature

// DefinitionLoaded is published once per location, on the first successful
// load.
type DefinitionLoaded struct {
	Location string
	ID       string
}

type ScopeCreated struct {
	UID     string
	ScopeID string
}

type ScopeDestroyed struct {
	UID     string
	ScopeID string
	Err     error
}
