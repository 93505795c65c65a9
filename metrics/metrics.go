package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clienthub_login_failures_total",
		Help: "Failed login attempts by reason",
	}, []string{"reason"})

	AccountLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clienthub_account_lockouts_total",
		Help: "Accounts locked after repeated failed logins",
	})

	TokenRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clienthub_refresh_token_rotations_total",
		Help: "Successful refresh token rotations",
	})

	TokenReuseDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clienthub_refresh_token_reuse_detections_total",
		Help: "Revoked refresh tokens presented again (theft signal)",
	})

	TenantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clienthub_tenant_context_violations_total",
		Help: "Tenant-scoped queries attempted without tenant context",
	})

	ImpersonationTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clienthub_impersonation_tokens_total",
		Help: "Impersonation access tokens issued by admins",
	})
)
