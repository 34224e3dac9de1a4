package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultEndpoint   = "https://firestore.googleapis.com"
	DefaultDatabaseID = "(default)"
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultScope      = "https://www.googleapis.com/auth/datastore"

	DefaultTokenTTL       = time.Hour
	DefaultRenewBefore    = 2 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
)

type AuthConfig struct {
	ServiceIdentity string        `koanf:"service_identity" mapstructure:"service_identity"`
	PrivateKey      string        `koanf:"private_key" mapstructure:"private_key"`
	TokenURL        string        `koanf:"token_url" mapstructure:"token_url"`
	Scope           string        `koanf:"scope" mapstructure:"scope"`
	TokenTTL        time.Duration `koanf:"token_ttl" mapstructure:"token_ttl"`
	RenewBefore     time.Duration `koanf:"renew_before" mapstructure:"renew_before"`
}

type HTTPConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
}

type Config struct {
	ProjectID         string     `koanf:"project_id" mapstructure:"project_id"`
	DatabaseID        string     `koanf:"database_id" mapstructure:"database_id"`
	Endpoint          string     `koanf:"endpoint" mapstructure:"endpoint"`
	AssignDocumentIDs bool       `koanf:"assign_document_ids" mapstructure:"assign_document_ids"`
	Auth              AuthConfig `koanf:"auth" mapstructure:"auth"`
	HTTP              HTTPConfig `koanf:"http" mapstructure:"http"`
}

func DefaultConfig() Config {
	return Config{
		DatabaseID: DefaultDatabaseID,
		Endpoint:   DefaultEndpoint,
		Auth: AuthConfig{
			TokenURL:    DefaultTokenURL,
			Scope:       DefaultScope,
			TokenTTL:    DefaultTokenTTL,
			RenewBefore: DefaultRenewBefore,
		},
		HTTP: HTTPConfig{
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return fmt.Errorf("core: project_id is required")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("core: endpoint is required")
	}
	if strings.TrimSpace(c.DatabaseID) == "" {
		return fmt.Errorf("core: database_id is required")
	}
	return nil
}

// SigningIdentity assembles the immutable identity material from the auth
// block. Key material is treated as opaque; it is validated only by virtue of
// failing the signing step if malformed.
func (c Config) SigningIdentity() SigningIdentity {
	return SigningIdentity{
		ServiceIdentity: strings.TrimSpace(c.Auth.ServiceIdentity),
		PrivateKey:      []byte(c.Auth.PrivateKey),
		TokenAudience:   strings.TrimSpace(c.Auth.TokenURL),
		Scope:           strings.TrimSpace(c.Auth.Scope),
	}
}
