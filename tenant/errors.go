package tenant

import "errors"

var (
	// ErrMissingContext is returned when a tenant-scoped query is attempted
	// without a tenant bound to the context. The query is aborted before any
	// I/O happens.
	ErrMissingContext = errors.New("tenant context missing: access denied")

	// ErrCrossTenantWrite is returned when a row stamped for one tenant is
	// written while a different tenant is bound to the context.
	ErrCrossTenantWrite = errors.New("cross-tenant write rejected")
)
