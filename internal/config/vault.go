package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/vault/api"
	"resumatch/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KVv2 paths)
type VaultSecrets struct {
	GeminiKey     string `mapstructure:"geminiKey"`     // secret with an "api_key" field
	S3Credentials string `mapstructure:"s3Credentials"` // secret with "access_key" and "secret_key" fields
}

// logicalReader is the part of the Vault logical API used to read secrets
type logicalReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultClient reads secrets from a Vault KVv2 engine
type VaultClient struct {
	logical logicalReader
	logger  *errors.Logger
}

// NewVaultClient connects to Vault and checks its health
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", vaultConfig.Address, err)
	}
	logger.Info("Connected to Vault",
		"address", vaultConfig.Address,
		"namespace", config.Namespace,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{logical: client.Logical(), logger: logger}, nil
}

// resolveVaultToken returns the configured token, reading TokenFile when no
// inline token is set
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecret returns the data map of a KVv2 secret
func (vc *VaultClient) GetSecret(path string) (map[string]any, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.logical.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	// KVv2 nests the fields under "data", next to "metadata"
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	return data, nil
}

// GetStringSecret retrieves one string field of a KVv2 secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	data, err := vc.GetSecret(path)
	if err != nil {
		return "", err
	}
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	vc.logger.Debug("String secret retrieved from Vault",
		"path", path,
		"key", key,
		"masked_value", maskSecret(strValue))
	return strValue, nil
}

// maskSecret keeps the first and last four characters of long values
func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads the Gemini key and S3 credentials from Vault into
// config. It does nothing when Vault is disabled.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	logger.Info("Loading secrets from Vault",
		"gemini_key_path", config.Vault.Secrets.GeminiKey,
		"s3_credentials_path", config.Vault.Secrets.S3Credentials)

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize vault client", err)
	}
	return loadAllSecretsFromVault(client, config, logger)
}

// secretReader is the part of VaultClient the loaders need
type secretReader interface {
	GetStringSecret(path, key string) (string, error)
}

// loadAllSecretsFromVault loads all configured secrets from Vault
func loadAllSecretsFromVault(client secretReader, config *Config, logger *errors.Logger) error {
	if err := loadGeminiKeyFromVault(client, config, logger); err != nil {
		return err
	}
	return loadS3CredentialsFromVault(client, config, logger)
}

// loadGeminiKeyFromVault loads Gemini API key from Vault
func loadGeminiKeyFromVault(client secretReader, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.GeminiKey
	if path == "" {
		return nil
	}

	geminiKey, err := client.GetStringSecret(path, "api_key")
	if err != nil {
		return fmt.Errorf("failed to load Gemini API key from vault: %w", err)
	}
	if geminiKey == "" {
		logger.Warn("Empty Gemini API key found in Vault", "path", path)
		return nil
	}

	applyGeminiKeyToConfig(config, geminiKey)
	logger.Info("Gemini API key loaded from Vault", "path", path)
	return nil
}

// applyGeminiKeyToConfig applies the Gemini API key to all AI configurations
// without overriding explicit per-operation keys
func applyGeminiKeyToConfig(config *Config, geminiKey string) {
	config.AI.APIKey = geminiKey
	for _, op := range []*OperationAIConfig{&config.AI.GapAnalysis, &config.AI.Rewrite, &config.AI.Embedding} {
		if op.APIKey == "" {
			op.APIKey = geminiKey
		}
	}
}

// loadS3CredentialsFromVault loads object storage credentials for s3:// inputs
func loadS3CredentialsFromVault(client secretReader, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.S3Credentials
	if path == "" {
		return nil
	}

	accessKey, err := client.GetStringSecret(path, "access_key")
	if err != nil {
		return fmt.Errorf("failed to load S3 access key from vault: %w", err)
	}
	secretKey, err := client.GetStringSecret(path, "secret_key")
	if err != nil {
		return fmt.Errorf("failed to load S3 secret key from vault: %w", err)
	}

	config.Sources.S3.AccessKey = accessKey
	config.Sources.S3.SecretKey = secretKey
	logger.Info("S3 credentials loaded from Vault", "path", path)
	return nil
}
