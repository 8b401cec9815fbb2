// Package firebase implements identity.Provider against Firebase
// Authentication. ID tokens are verified locally against Google's published
// keys; account operations go through the Firebase Admin SDK.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	firebasesdk "firebase.google.com/go/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nexusquery/auth-gateway/internal/identity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

const tracerName = "github.com/nexusquery/auth-gateway/internal/identity/firebase"

// trust is the immutable handle published after a successful Init.
type trust struct {
	projectID string
	issuer    string
	keys      *jwk.Cache
	users     userAdmin
}

// Provider is a Firebase-backed identity.Provider.
type Provider struct {
	cfg    Config
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time

	tokenSource oauth2.TokenSource
	jwksClient  *http.Client

	initMu sync.Mutex
	state  atomic.Pointer[trust]
}

var _ identity.Provider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithTokenSource supplies admin credentials directly instead of reading
// the service account file.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(p *Provider) {
		p.tokenSource = ts
	}
}

// WithJWKSHTTPClient sets the client used to fetch signing keys.
func WithJWKSHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.jwksClient = c
	}
}

// WithClock overrides the verification clock.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider creates an uninitialized provider. Call Init before use.
func NewProvider(cfg Config, opts ...Option) *Provider {
	cfg.normalize()
	p := &Provider{
		cfg:    cfg,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.jwksClient == nil {
		p.jwksClient = &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		}
	}
	return p
}

// Init loads the service account and fetches the signing keys once. Calling
// Init again after it succeeded is a no-op.
func (p *Provider) Init(ctx context.Context) error {
	p.initMu.Lock()
	defer p.initMu.Unlock()
	if p.state.Load() != nil {
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "firebase.init")
	defer span.End()

	if err := p.cfg.validate(p.tokenSource != nil); err != nil {
		return recordSpanError(span, err)
	}

	ts := p.tokenSource
	projectID := p.cfg.ProjectID
	if ts == nil {
		creds, err := loadServiceAccount(ctx, p.cfg.ServiceAccountPath)
		if err != nil {
			return recordSpanError(span, err)
		}
		ts = creds.tokens
		if projectID == "" {
			projectID = creds.projectID
		}
		p.logger.Info("firebase_service_account_loaded",
			zap.String("client_email", creds.clientEmail),
		)
	}
	if projectID == "" {
		return recordSpanError(span, errors.New("firebase project id is not configured"))
	}

	// The cache refreshes in the background for the life of the process.
	cache := jwk.NewCache(context.Background())
	if err := cache.Register(p.cfg.JWKSURL,
		jwk.WithMinRefreshInterval(p.cfg.MinRefresh),
		jwk.WithHTTPClient(p.jwksClient),
	); err != nil {
		return recordSpanError(span, fmt.Errorf("register jwks: %w", err))
	}
	warmCtx, cancel := context.WithTimeout(ctx, p.cfg.HTTPTimeout)
	defer cancel()
	if _, err := cache.Refresh(warmCtx, p.cfg.JWKSURL); err != nil {
		return recordSpanError(span, fmt.Errorf("fetch signing keys: %w", err))
	}

	// FIREBASE_AUTH_EMULATOR_HOST, when set, is honored by the SDK.
	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: projectID},
		option.WithTokenSource(oauth2.ReuseTokenSource(nil, ts)),
	)
	if err != nil {
		return recordSpanError(span, fmt.Errorf("create firebase app: %w", err))
	}
	users, err := app.Auth(ctx)
	if err != nil {
		return recordSpanError(span, fmt.Errorf("create firebase auth client: %w", err))
	}

	p.state.Store(&trust{
		projectID: projectID,
		issuer:    issuerPrefix + projectID,
		keys:      cache,
		users:     users,
	})
	p.logger.Info("firebase_initialized", zap.String("project_id", projectID))
	return nil
}

// ProjectID returns the initialized project id, or "" before Init.
func (p *Provider) ProjectID() string {
	if st := p.state.Load(); st != nil {
		return st.projectID
	}
	return ""
}

func (p *Provider) ready() (*trust, error) {
	st := p.state.Load()
	if st == nil {
		return nil, identity.NewError(identity.ErrCodeUnavailable, errors.New("provider not initialized"))
	}
	return st, nil
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
