// package store provides durable key-value persistence for the session
// credential and its cached user record.
//
// The KV interface abstracts the backing medium so the credential store works
// unchanged over a JSON file, the application's SQLite database, or an
// in-memory fake in tests.
package store

// KV is a durable key-value medium keyed by fixed logical names.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set writes the value for key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
