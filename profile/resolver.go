// Package profile provides the ProfileResolver implementation: fetch the
// profile row for a subject identity, provisioning one lazily when absent.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/audit"
)

// FallbackDisplayName is used when neither identity metadata nor the email
// yields a usable display name.
const FallbackDisplayName = "New User"

// Recorder receives resolution outcomes.
// Implementations: metrics/ (prometheus), or nil for none.
type Recorder interface {
	RecordProfileResolution(outcome string)
}

// Resolver implements hostwise.ProfileResolver against a ProfileStore.
type Resolver struct {
	store    hostwise.ProfileStore
	logger   *slog.Logger
	recorder Recorder
	audit    *audit.Logger
}

// compile-time check
var _ hostwise.ProfileResolver = (*Resolver)(nil)

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithRecorder sets the observability recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithAudit sets an audit logger for provisioning events.
func WithAudit(a *audit.Logger) Option {
	return func(r *Resolver) { r.audit = a }
}

// New creates a resolver over the given profile store.
func New(store hostwise.ProfileStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve fetches the profile keyed by the subject id, provisioning a
// viewer-role profile when no row exists yet.
//
// A (nil, nil) return means "absent": cancellation of a superseded fetch,
// or a failed provisioning insert. Both are expected outcomes of
// de-duplicated concurrent reconciliation, logged but never surfaced.
// Any other fetch failure returns a *hostwise.ProfileResolutionError;
// callers treat the profile as absent either way.
func (r *Resolver) Resolve(ctx context.Context, ident hostwise.Identity) (*hostwise.Profile, error) {
	p, err := r.store.Get(ctx, ident.ID)
	switch {
	case err == nil:
		r.record("found")
		return p, nil

	case errors.Is(err, hostwise.ErrNotFound):
		return r.provision(ctx, ident)

	case hostwise.IsCancellation(err):
		r.logger.Debug("profile fetch superseded", "subject_id", ident.ID)
		r.record("absent")
		return nil, nil

	default:
		r.logger.Warn("profile fetch failed", "subject_id", ident.ID, "error", err)
		r.record("error")
		return nil, &hostwise.ProfileResolutionError{SubjectID: ident.ID, Err: err}
	}
}

// provision inserts a new profile row with the lowest privilege level.
// Insert failures resolve to an absent profile, not an error: the caller
// must treat "no profile" as "not authorized", never crash.
func (r *Resolver) provision(ctx context.Context, ident hostwise.Identity) (*hostwise.Profile, error) {
	inserted, err := r.store.Insert(ctx, hostwise.Profile{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: displayName(ident),
		Role:        hostwise.RoleViewer,
	})
	if err != nil {
		if hostwise.IsCancellation(err) {
			r.logger.Debug("profile insert superseded", "subject_id", ident.ID)
		} else {
			r.logger.Warn("profile insert failed", "subject_id", ident.ID, "error", err)
		}
		r.record("absent")
		return nil, nil
	}

	r.logger.Info("provisioned profile", "subject_id", ident.ID, "role", inserted.Role)
	r.record("provisioned")
	if r.audit != nil {
		r.audit.Log(audit.Event{
			SubjectID: ident.ID,
			Email:     ident.Email,
			Action:    audit.ActionProfileProvisioned,
			Result:    "success",
		})
	}
	return inserted, nil
}

// displayName derives a default display name: identity metadata, else the
// local part of the email, else a fallback literal.
func displayName(ident hostwise.Identity) string {
	if v, ok := ident.Metadata["display_name"].(string); ok && v != "" {
		return v
	}
	if at := strings.Index(ident.Email, "@"); at > 0 {
		return ident.Email[:at]
	}
	return FallbackDisplayName
}

func (r *Resolver) record(outcome string) {
	if r.recorder != nil {
		r.recorder.RecordProfileResolution(outcome)
	}
}
