package redcached

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The client calls them on hot paths.
type Hooks interface {
	// An operation found a value of another type under key.
	WrongType(key string, want, got Type)

	// Bytes under storageKey carry the envelope magic but do not decode.
	CorruptEnvelope(storageKey string, err error)

	// Provider returned ok=false on Set.
	ProviderSetRejected(storageKey string)

	// A hash or set lost its last element and the key was deleted.
	CollectionEmptied(key string, t Type)

	// Strict mode lost a compare-and-set race (attempt is 1-based).
	CASConflict(key string, attempt int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) WrongType(string, Type, Type)   {}
func (NopHooks) CorruptEnvelope(string, error)  {}
func (NopHooks) ProviderSetRejected(string)     {}
func (NopHooks) CollectionEmptied(string, Type) {}
func (NopHooks) CASConflict(string, int)        {}
