package tenant

import (
	"context"

	"github.com/Triet1705/client-hub-backend/services/logging"
)

// RunAsSystem executes fn with cross-tenant access enabled. It is the only
// sanctioned way to bypass the isolation predicate; the bypass is bounded to
// the lifetime of fn and the ambient tenant scoping of the caller's context
// is untouched. If the caller had no ambient tenant the ambiguity is logged,
// since any follow-up scoped query on that context will fail closed.
func RunAsSystem(ctx context.Context, logger *logging.Service, fn func(ctx context.Context) error) error {
	err := fn(WithSystemScope(ctx))

	if _, ok := FromContext(ctx); !ok {
		logger.Warn("system scope released without an ambient tenant; subsequent scoped queries will be denied")
	}

	return err
}
