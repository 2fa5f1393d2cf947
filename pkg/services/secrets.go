package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/crypto"
	"github.com/datadrift/datadrift/pkg/models"
)

// sensitiveKeys are config keys whose values are encrypted at rest and masked
// on read. Matching is case-insensitive at any depth.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"apiKey",
	"api_key",
	"token",
	"access_token",
	"secret",
	"credentials",
}

func isSensitiveKey(key string) bool {
	for _, k := range sensitiveKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// parseConfig decodes a config document, which must be a JSON object.
func parseConfig(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "config is required and must be valid JSON")
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "config must be valid JSON: %s", err.Error())
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "config must be a JSON object")
	}
	return obj, nil
}

func encodeConfig(obj map[string]any) (string, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(b), nil
}

// sealSecrets encrypts sensitive scalar values in place. Numbers and booleans
// under a sensitive key are stored as sealed strings.
func sealSecrets(obj map[string]any, enc *crypto.CredentialEncryptor) error {
	for key, value := range obj {
		switch v := value.(type) {
		case map[string]any:
			if err := sealSecrets(v, enc); err != nil {
				return err
			}
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					if err := sealSecrets(nested, enc); err != nil {
						return err
					}
				}
			}
		case string:
			if !isSensitiveKey(key) {
				continue
			}
			sealed, err := enc.Seal(v)
			if err != nil {
				return fmt.Errorf("failed to encrypt %s: %w", key, err)
			}
			obj[key] = sealed
		case float64, bool:
			if !isSensitiveKey(key) {
				continue
			}
			sealed, err := enc.Seal(fmt.Sprint(v))
			if err != nil {
				return fmt.Errorf("failed to encrypt %s: %w", key, err)
			}
			obj[key] = sealed
		}
	}
	return nil
}

// openSecrets decrypts every ENC(...) value in place.
func openSecrets(obj map[string]any, enc *crypto.CredentialEncryptor) error {
	for key, value := range obj {
		switch v := value.(type) {
		case map[string]any:
			if err := openSecrets(v, enc); err != nil {
				return err
			}
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					if err := openSecrets(nested, enc); err != nil {
						return err
					}
				}
			}
		case string:
			if !crypto.IsSealed(v) {
				continue
			}
			plain, err := enc.Open(v)
			if err != nil {
				return fmt.Errorf("%w: %s", apperrors.ErrCredentialsKeyMismatch, key)
			}
			obj[key] = plain
		}
	}
	return nil
}

// maskSecrets replaces sensitive values and any sealed value with the masked
// placeholder, in place.
func maskSecrets(obj map[string]any) {
	for key, value := range obj {
		switch v := value.(type) {
		case map[string]any:
			maskSecrets(v)
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					maskSecrets(nested)
				}
			}
		case string:
			if isSensitiveKey(key) || crypto.IsSealed(v) {
				obj[key] = models.MaskedValue
			}
		case float64, bool:
			if isSensitiveKey(key) {
				obj[key] = models.MaskedValue
			}
		}
	}
}

// maskConfig returns the stored config with secrets masked. A document that
// is not a JSON object is returned as stored.
func maskConfig(stored string) string {
	var doc any
	if err := json.Unmarshal([]byte(stored), &doc); err != nil {
		return stored
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return stored
	}
	maskSecrets(obj)
	masked, err := encodeConfig(obj)
	if err != nil {
		return stored
	}
	return masked
}

// keepStoredSecrets resolves masked placeholders in an incoming config. Each
// placeholder takes the stored value at the same path, with array elements
// paired by index. Placeholders with no stored counterpart are dropped. With
// stored nil (create) every placeholder is dropped.
func keepStoredSecrets(incoming, stored map[string]any) {
	for key, value := range incoming {
		switch v := value.(type) {
		case map[string]any:
			nested, _ := stored[key].(map[string]any)
			keepStoredSecrets(v, nested)
		case []any:
			prevItems, _ := stored[key].([]any)
			for i, item := range v {
				nested, ok := item.(map[string]any)
				if !ok {
					continue
				}
				var prev map[string]any
				if i < len(prevItems) {
					prev, _ = prevItems[i].(map[string]any)
				}
				keepStoredSecrets(nested, prev)
			}
		case string:
			if v != models.MaskedValue {
				continue
			}
			if prev, ok := stored[key]; ok {
				if _, isObj := prev.(map[string]any); !isObj {
					incoming[key] = prev
					continue
				}
			}
			delete(incoming, key)
		}
	}
}
