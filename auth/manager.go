package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-docstore/core"
)

// AssertionExchanger trades a signed assertion for a bearer token.
type AssertionExchanger interface {
	Exchange(ctx context.Context, assertion string) (Token, error)
}

// Credential is the cached acquisition result. Replaced wholesale on
// re-acquisition, never partially mutated.
type Credential struct {
	AccessToken string
	TokenType   string
	ObtainedAt  time.Time
	ExpiresAt   time.Time
}

type CredentialManagerConfig struct {
	Identity    core.SigningIdentity
	TokenTTL    time.Duration
	RenewBefore time.Duration
	Exchanger   AssertionExchanger
	HTTPClient  core.HTTPDoer
	Logger      core.Logger
	Now         func() time.Time
}

// CredentialManager owns the process credential cache. The mutex is held
// across the whole acquisition, so concurrent first callers await a single
// exchange instead of issuing duplicates.
type CredentialManager struct {
	config    CredentialManagerConfig
	exchanger AssertionExchanger
	logger    core.Logger

	mu     sync.Mutex
	cached *Credential
}

func NewCredentialManager(cfg CredentialManagerConfig) *CredentialManager {
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = core.DefaultTokenTTL
	}
	renewBefore := cfg.RenewBefore
	if renewBefore <= 0 {
		renewBefore = core.DefaultRenewBefore
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	exchanger := cfg.Exchanger
	if exchanger == nil {
		exchanger = NewExchangeClient(ExchangeClientConfig{
			TokenURL:   cfg.Identity.TokenAudience,
			HTTPClient: cfg.HTTPClient,
		})
	}
	return &CredentialManager{
		config: CredentialManagerConfig{
			Identity:    cfg.Identity,
			TokenTTL:    tokenTTL,
			RenewBefore: renewBefore,
			Now:         now,
		},
		exchanger: exchanger,
		logger:    glog.Ensure(cfg.Logger),
	}
}

// Token returns the cached bearer token while it remains inside its declared
// validity minus the renew-before margin, and re-acquires otherwise. No
// retry is attempted; failures carry the original cause.
func (m *CredentialManager) Token(ctx context.Context) (string, error) {
	if m == nil {
		return "", &Error{Message: "credential manager is not configured", Cause: ErrAuthenticationFailed}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.config.Now().UTC()
	if m.cached != nil && m.cached.ExpiresAt.After(now.Add(m.config.RenewBefore)) {
		return m.cached.AccessToken, nil
	}

	assertion, err := BuildAssertion(m.config.Identity, now, m.config.TokenTTL)
	if err != nil {
		return "", err
	}
	token, err := m.exchanger.Exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	expiresIn := token.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = int64(m.config.TokenTTL / time.Second)
	}
	m.cached = &Credential{
		AccessToken: strings.TrimSpace(token.AccessToken),
		TokenType:   strings.TrimSpace(token.TokenType),
		ObtainedAt:  now,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
	}
	m.logger.Debug("bearer token acquired",
		"issuer", m.config.Identity.ServiceIdentity,
		"expires_at", m.cached.ExpiresAt.Format(time.RFC3339),
	)
	return m.cached.AccessToken, nil
}

// Invalidate drops the cached credential; the next Token call re-acquires.
func (m *CredentialManager) Invalidate() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

var _ core.TokenSource = (*CredentialManager)(nil)
