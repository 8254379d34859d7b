package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resumatch/internal/errors"
)

type fakeSecretReader struct {
	secrets map[string]map[string]string
}

func (f *fakeSecretReader) GetStringSecret(path, key string) (string, error) {
	secret, ok := f.secrets[path]
	if !ok {
		return "", fmt.Errorf("secret not found at path: %s", path)
	}
	value, ok := secret[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return value, nil
}

type fakeLogical struct {
	secrets map[string]*api.Secret
	err     error
}

func (f *fakeLogical) Read(path string) (*api.Secret, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.secrets[path], nil
}

func kv2(data map[string]any) *api.Secret {
	return &api.Secret{Data: map[string]any{
		"data":     data,
		"metadata": map[string]any{"version": "3"},
	}}
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{AI: AIConfig{Rewrite: OperationAIConfig{APIKey: "existing-rewrite-key"}}}

	applyGeminiKeyToConfig(config, "vault-key")

	assert.Equal(t, "vault-key", config.AI.APIKey)
	assert.Equal(t, "vault-key", config.AI.GapAnalysis.APIKey)
	assert.Equal(t, "vault-key", config.AI.Embedding.APIKey)
	assert.Equal(t, "existing-rewrite-key", config.AI.Rewrite.APIKey)
}

func TestLoadAllSecretsFromVault(t *testing.T) {
	reader := &fakeSecretReader{secrets: map[string]map[string]string{
		"secret/data/gemini": {"api_key": "vault-gemini-key"},
		"secret/data/empty":  {"api_key": ""},
		"secret/data/s3":     {"access_key": "AKIA123", "secret_key": "s3cr3t"},
		"secret/data/s3half": {"access_key": "AKIA123"},
	}}
	logger := errors.NewDiscardLogger()

	t.Run("all secrets configured", func(t *testing.T) {
		config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{
			GeminiKey:     "secret/data/gemini",
			S3Credentials: "secret/data/s3",
		}}}

		require.NoError(t, loadAllSecretsFromVault(reader, config, logger))
		assert.Equal(t, "vault-gemini-key", config.AI.APIKey)
		assert.Equal(t, "vault-gemini-key", config.AI.Embedding.APIKey)
		assert.Equal(t, "AKIA123", config.Sources.S3.AccessKey)
		assert.Equal(t, "s3cr3t", config.Sources.S3.SecretKey)
	})

	t.Run("no paths configured", func(t *testing.T) {
		config := &Config{}
		require.NoError(t, loadAllSecretsFromVault(reader, config, logger))
		assert.Empty(t, config.AI.APIKey)
	})

	t.Run("empty gemini key keeps degraded mode", func(t *testing.T) {
		config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "secret/data/empty"}}}
		require.NoError(t, loadAllSecretsFromVault(reader, config, logger))
		assert.Empty(t, config.AI.APIKey)
	})

	t.Run("missing gemini secret", func(t *testing.T) {
		config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "secret/data/other"}}}
		err := loadAllSecretsFromVault(reader, config, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load Gemini API key from vault")
	})

	t.Run("incomplete s3 secret", func(t *testing.T) {
		config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{S3Credentials: "secret/data/s3half"}}}
		err := loadAllSecretsFromVault(reader, config, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load S3 secret key from vault")
		assert.Empty(t, config.Sources.S3.AccessKey)
	})
}

func TestResolveVaultToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "vault-token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))
	emptyFile := filepath.Join(dir, "empty-token")
	require.NoError(t, os.WriteFile(emptyFile, []byte("   \n  \n"), 0600))

	tests := []struct {
		name      string
		config    VaultConfig
		expected  string
		errSubstr string
	}{
		{name: "inline token", config: VaultConfig{Token: "direct-token", TokenFile: tokenFile}, expected: "direct-token"},
		{name: "token file is trimmed", config: VaultConfig{TokenFile: tokenFile}, expected: "file-token"},
		{name: "missing token file", config: VaultConfig{TokenFile: filepath.Join(dir, "nope")}, errSubstr: "failed to read vault token file"},
		{name: "no token", config: VaultConfig{}, errSubstr: "vault token is required"},
		{name: "blank token file", config: VaultConfig{TokenFile: emptyFile}, errSubstr: "vault token is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := resolveVaultToken(tt.config)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false, Secrets: VaultSecrets{GeminiKey: "secret/data/gemini"}}}
	require.NoError(t, ApplyVaultSecrets(config, nil))
	assert.Empty(t, config.AI.APIKey)
}

func TestVaultClientGetStringSecret(t *testing.T) {
	vc := &VaultClient{
		logical: &fakeLogical{secrets: map[string]*api.Secret{
			"secret/data/gemini": kv2(map[string]any{"api_key": "AIzaSyExample1234"}),
			"secret/data/number": kv2(map[string]any{"api_key": 42}),
			"secret/data/kv1":    {Data: map[string]any{"api_key": "flat"}},
		}},
		logger: errors.NewDiscardLogger(),
	}

	value, err := vc.GetStringSecret("secret/data/gemini", "api_key")
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyExample1234", value)

	tests := []struct {
		name      string
		path      string
		key       string
		errSubstr string
	}{
		{"missing secret", "secret/data/none", "api_key", "secret not found at path"},
		{"missing key", "secret/data/gemini", "token", "key 'token' not found"},
		{"non-string value", "secret/data/number", "api_key", "is not a string"},
		{"kv version 1 layout", "secret/data/kv1", "api_key", "not in KVv2 format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vc.GetStringSecret(tt.path, tt.key)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	t.Run("read failure", func(t *testing.T) {
		failing := &VaultClient{logical: &fakeLogical{err: fmt.Errorf("permission denied")}, logger: errors.NewDiscardLogger()}
		_, err := failing.GetSecret("secret/data/gemini")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("nil client", func(t *testing.T) {
		var nilClient *VaultClient
		_, err := nilClient.GetSecret("secret/data/gemini")
		assert.EqualError(t, err, "vault client not initialized")
	})
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "AIza****1234", maskSecret("AIzaSyExample1234"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
