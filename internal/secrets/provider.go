package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment SecretSource = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault SecretSource = "vault"
	// SourceAuto uses vault in staging/production, environment in development
	SourceAuto SecretSource = "auto"
)

// ErrSecretNotFound is returned when a secret has no value in the configured source
var ErrSecretNotFound = errors.New("secret not found")

// Getter fetches a single named secret. VaultClient implements it.
type Getter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Provider abstracts secret retrieval from different sources
type Provider struct {
	source      SecretSource
	vault       Getter
	logger      *zap.Logger
	environment string
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Binding maps one secret to the setting it fills.
type Binding struct {
	SecretName string
	EnvName    string
	Target     *string
	Required   bool
}

// NewProvider creates a new secrets provider
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	provider := &Provider{
		source:      source,
		logger:      logger,
		environment: cfg.Environment,
	}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vaultClient, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		provider.vault = vaultClient
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)

	return provider, nil
}

// NewProviderWithGetter builds a vault-backed provider around an existing
// getter, e.g. a stub in tests.
func NewProviderWithGetter(getter Getter, environment string, logger *zap.Logger) *Provider {
	return &Provider{source: SourceVault, vault: getter, logger: logger, environment: environment}
}

// ResolveSource turns "auto" into a concrete source for the environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// GetSecret retrieves a secret by name
// For vault source, secretName is the Key Vault secret name
// For environment source, secretName is the environment variable name
func (p *Provider) GetSecret(ctx context.Context, secretName string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(secretName)
		if value == "" {
			return "", fmt.Errorf("%w: environment variable %q not set", ErrSecretNotFound, secretName)
		}
		return value, nil

	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, secretName)

	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv checks the environment override first, then the configured source
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if envValue := os.Getenv(envName); envValue != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return envValue, nil
	}
	return p.GetSecret(ctx, secretName)
}

// Resolve fills every binding target. A missing optional secret leaves its
// target untouched; a missing required secret is an error naming all of them.
func (p *Provider) Resolve(ctx context.Context, bindings []Binding) error {
	var missing []string
	for _, b := range bindings {
		value, err := p.GetSecretOrEnv(ctx, b.SecretName, b.EnvName)
		if err == nil && value != "" {
			*b.Target = value
			continue
		}
		if b.Required && *b.Target == "" {
			missing = append(missing, b.SecretName)
			continue
		}
		p.logger.Debug("Secret not resolved, keeping configured value",
			zap.String("secret_name", b.SecretName),
			zap.Error(err),
		)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrSecretNotFound, missing)
	}
	return nil
}

// Source returns the current secret source
func (p *Provider) Source() SecretSource {
	return p.source
}

// IsVaultEnabled returns true if secrets are loaded from vault
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
