package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nexusquery/auth-gateway/internal/identity"
	"go.opentelemetry.io/otel/codes"
)

// VerifyToken checks a Firebase ID token. Expiry is evaluated first and
// without clock skew, so a token past its exp is reported as expired whether
// or not its signature holds. Skew only relaxes the iat, nbf and auth_time
// checks.
func (p *Provider) VerifyToken(ctx context.Context, raw string) (*identity.TokenPayload, error) {
	ctx, span := p.tracer.Start(ctx, "firebase.verify_token")
	defer span.End()

	payload, err := p.verify(ctx, raw)
	if err != nil {
		span.SetStatus(codes.Error, string(identity.CodeOf(err)))
		return nil, err
	}
	return payload, nil
}

func (p *Provider) verify(ctx context.Context, raw string) (*identity.TokenPayload, error) {
	st, err := p.ready()
	if err != nil {
		return nil, err
	}

	data := []byte(raw)
	msg, err := jws.Parse(data)
	if err != nil {
		return nil, identity.NewError(identity.ErrCodeMalformedToken, err)
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return nil, identity.NewError(identity.ErrCodeMalformedToken, fmt.Errorf("expected one signature, got %d", len(sigs)))
	}
	headers := sigs[0].ProtectedHeaders()
	if headers.Algorithm() != jwa.RS256 {
		return nil, identity.NewError(identity.ErrCodeInvalidSignature, fmt.Errorf("unexpected signing algorithm %q", headers.Algorithm()))
	}
	if headers.KeyID() == "" {
		return nil, identity.NewError(identity.ErrCodeInvalidSignature, errors.New("token has no kid header"))
	}

	unverified, err := jwt.ParseInsecure(data)
	if err != nil {
		return nil, identity.NewError(identity.ErrCodeMalformedToken, err)
	}
	now := p.now()
	exp := unverified.Expiration()
	if exp.IsZero() {
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, errors.New("token has no exp claim"))
	}
	if !now.Before(exp) {
		return nil, identity.NewError(identity.ErrCodeTokenExpired, fmt.Errorf("token expired at %s", exp.UTC().Format(time.RFC3339)))
	}

	keys, err := st.keys.Get(ctx, p.cfg.JWKSURL)
	if err != nil {
		return nil, identity.NewError(identity.ErrCodeUnavailable, err)
	}
	token, err := jwt.Parse(data, jwt.WithKeySet(keys), jwt.WithValidate(false))
	if err != nil {
		return nil, identity.NewError(identity.ErrCodeInvalidSignature, err)
	}

	if err := jwt.Validate(token,
		jwt.WithIssuer(st.issuer),
		jwt.WithAudience(st.projectID),
		jwt.WithAcceptableSkew(p.cfg.ClockSkew),
		jwt.WithClock(jwt.ClockFunc(p.now)),
	); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, identity.NewError(identity.ErrCodeTokenExpired, err)
		}
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, err)
	}

	return p.payloadFrom(token, now)
}

func (p *Provider) payloadFrom(token jwt.Token, now time.Time) (*identity.TokenPayload, error) {
	sub := token.Subject()
	switch {
	case sub == "":
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, errors.New("token has no sub claim"))
	case len(sub) > maxSubjectLength:
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, errors.New("sub claim is too long"))
	}
	if token.IssuedAt().IsZero() {
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, errors.New("token has no iat claim"))
	}
	if authTime, ok := numericClaim(token, "auth_time"); ok && authTime.After(now.Add(p.cfg.ClockSkew)) {
		return nil, identity.NewError(identity.ErrCodeInvalidClaims, errors.New("auth_time is in the future"))
	}

	return &identity.TokenPayload{
		UID:           sub,
		Email:         stringClaim(token, "email"),
		EmailVerified: boolClaim(token, "email_verified"),
		Role:          stringClaim(token, "role"),
		IssuedAt:      token.IssuedAt(),
		ExpiresAt:     token.Expiration(),
	}, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func boolClaim(token jwt.Token, name string) bool {
	v, ok := token.Get(name)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func numericClaim(token jwt.Token, name string) (time.Time, bool) {
	v, ok := token.Get(name)
	if !ok {
		return time.Time{}, false
	}
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0), true
	case int64:
		return time.Unix(n, 0), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(i, 0), true
	}
	return time.Time{}, false
}
