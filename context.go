package hostwise

import "context"

type ctxKey string

const (
	ctxKeySubjectID ctxKey = "hostwise_subject_id"
	ctxKeyProfile   ctxKey = "hostwise_profile"
)

// WithSubjectID stores the authenticated subject id in the context.
func WithSubjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySubjectID, id)
}

// SubjectIDFromContext extracts the authenticated subject id from the context.
func SubjectIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeySubjectID).(string)
	return v
}

// WithProfile stores the resolved profile in the context.
func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, ctxKeyProfile, p)
}

// ProfileFromContext extracts the resolved profile from the context.
func ProfileFromContext(ctx context.Context) *Profile {
	v, _ := ctx.Value(ctxKeyProfile).(*Profile)
	return v
}
