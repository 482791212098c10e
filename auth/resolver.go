package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/metrics"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/store"
)

// Resolver turns a bearer credential into (user id, email, role),
// auto-provisioning a profile row the first time a subject is seen.
type Resolver struct {
	provider Provider
	store    store.Store
	log      *zap.Logger
}

func NewResolver(provider Provider, st store.Store, log *zap.Logger) *Resolver {
	return &Resolver{provider: provider, store: st, log: log}
}

// Resolve validates the credential and resolves the caller's identity.
// After the format and expiry checks pass, it never fails: provider or
// store trouble degrades to the role hint or the parent default so an
// outage cannot block use of the product.
func (r *Resolver) Resolve(ctx context.Context, token string) (CurrentUser, error) {
	if token == "" {
		return CurrentUser{}, ErrMissingToken
	}
	claims, err := decodeUnverified(token, time.Now().UTC())
	if err != nil {
		return CurrentUser{}, err
	}

	subject := claims.Subject
	email := claims.Email
	if s, e, verr := r.provider.Verify(ctx, token); verr == nil {
		subject, email = s, e
	} else {
		metrics.ProviderFailures.Inc()
		r.log.Warn("identity provider verification failed, using unverified claims",
			zap.Error(verr))
	}

	role := r.lookupRole(ctx, token, subject)
	if role == "" {
		role = r.provision(ctx, token, subject, email, claims.UserMetadata.Role)
	}
	if role == "" {
		role = models.RoleParent
	}
	return CurrentUser{ID: subject, Email: email, Role: role}, nil
}

// lookupRole reads the stored role through a credential-scoped client so
// row-level security resolves the caller as self. Any failure returns
// "" and is handled by the provisioning path.
func (r *Resolver) lookupRole(ctx context.Context, token, subject string) models.Role {
	scoped := r.store.WithToken(token)
	rows, err := scoped.Select(ctx, "users", store.Query{
		Filters: []store.Filter{store.Eq("id", subject)},
		Limit:   1,
	})
	if err != nil {
		r.log.Warn("role lookup failed", zap.String("user_id", subject), zap.Error(err))
		return ""
	}
	if len(rows) == 0 {
		return ""
	}
	return models.ParseRole(rowRole(rows[0]))
}

// provision creates the profile row for a never-seen subject and
// re-reads the role. A duplicate-key failure means a concurrent first
// call won the race, which is success. Falls back to the normalized
// role hint when the post-create read is blocked.
func (r *Resolver) provision(ctx context.Context, token, subject, email, roleHint string) models.Role {
	hint := models.ParseRole(roleHint)

	args := map[string]any{
		"p_id":           subject,
		"p_email":        email,
		"p_display_name": nil,
		"p_role":         nil,
	}
	if hint != "" {
		args["p_role"] = string(hint)
	}
	if err := r.store.Call(ctx, "create_user_profile", args); err != nil {
		if store.IsUniqueViolation(err) {
			r.log.Debug("profile already provisioned", zap.String("user_id", subject))
		} else {
			r.log.Warn("profile provisioning failed", zap.String("user_id", subject), zap.Error(err))
		}
	}

	if role := r.lookupRole(ctx, token, subject); role != "" {
		return role
	}
	return hint
}

func rowRole(row store.Row) string {
	s, _ := row["role"].(string)
	return s
}
