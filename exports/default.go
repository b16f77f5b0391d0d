package exports

import "sync"

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return NewRegistry(
		WithStrictNames(),
		WithMiddleware(PanicRecoveryMiddleware()),
		WithBundle(NumericsBundle(Policy{})),
	)
})

// Default returns the process-wide registry with the reference policy.
// It is built on first use and never changes afterwards.
func Default() *Registry {
	reg, err := defaultRegistry()
	if err != nil {
		// The built-in bundle has fixed, unique names.
		panic("exports: default registry: " + err.Error())
	}
	return reg
}
