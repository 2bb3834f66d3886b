//go:build !unix

package mudb

// lockFile is a no-op where flock is unavailable. Callers must not run two
// mutating invocations against the same database at once.
func lockFile(path string) (func(), error) {
	return func() {}, nil
}
