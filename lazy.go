package layenv

import "sync"

// Lazy returns a function that runs load on its first call and returns the
// same config and error on every later call, from any goroutine. Use it for
// an explicit process-wide config instead of loading in init():
//
//	var appConfig = layenv.Lazy(func() (Config, error) {
//		return parser.Load(".env", ".env.local")
//	})
//
// A failed load is cached too; the process is expected to exit on it.
func Lazy[T any](load func() (T, error)) func() (T, error) {
	return sync.OnceValues(load)
}
