package cache

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const maxKeyLength = 250

// ValidateKey checks if a key is valid.
//
// Rules:
// - Non-empty string
// - Maximum length of 250 characters
// - No control characters
// - No leading or trailing whitespace
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidKey, maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: key contains control character", ErrInvalidKey)
		}
	}

	if strings.TrimSpace(key) != key {
		return fmt.Errorf("%w: key has leading or trailing whitespace", ErrInvalidKey)
	}

	return nil
}

// KeyPattern builds keys from a prefix and parts joined by a separator.
type KeyPattern struct {
	prefix    string
	separator string
}

// NewKeyPattern creates a new key pattern with the given prefix and separator.
func NewKeyPattern(prefix, separator string) *KeyPattern {
	if separator == "" {
		separator = ":"
	}
	return &KeyPattern{
		prefix:    prefix,
		separator: separator,
	}
}

// Build creates a key from the pattern and provided parts.
// Example: pattern.Build("id", "123") -> "accounts:id:123"
func (kp *KeyPattern) Build(parts ...string) string {
	if len(parts) == 0 {
		return kp.prefix
	}
	return kp.prefix + kp.separator + strings.Join(parts, kp.separator)
}

// AccountKeys names the mirror entries: the listing under "<ns>:list"
// and each account under "<ns>:id:<id>".
type AccountKeys struct {
	pattern *KeyPattern
}

// NewAccountKeys returns the key scheme for namespace ns ("accounts" when empty).
func NewAccountKeys(ns string) AccountKeys {
	if ns == "" {
		ns = "accounts"
	}
	return AccountKeys{pattern: NewKeyPattern(ns, ":")}
}

// List is the key of the full listing.
func (k AccountKeys) List() string {
	return k.pattern.Build("list")
}

// Account is the key of a single account.
func (k AccountKeys) Account(id int64) string {
	return k.pattern.Build("id", strconv.FormatInt(id, 10))
}

// ParseAccount extracts the id from an Account key.
func (k AccountKeys) ParseAccount(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, k.pattern.Build("id")+k.pattern.separator)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
