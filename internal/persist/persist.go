// Package persist is the durable key/value mirror the store uses to keep
// the signed-in user, the access token and the theme across restarts.
package persist

import (
	"encoding/json"
	"fmt"
)

// Keys written by the store.
const (
	KeyUser  = "mycart_user"
	KeyTheme = "mycart_theme"
	KeyToken = "mycart_token"
)

// Bridge is a synchronous string key/value store.  Save is idempotent.
// Load reports ok=false for an absent key.  Remove of an absent key is
// not an error.
type Bridge interface {
	Save(key, value string) error
	Load(key string) (value string, ok bool, err error)
	Remove(key string) error
}

// SaveJSON marshals v and saves it under key.
func SaveJSON(b Bridge, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("persist: marshal %s: %w", key, err)
	}
	return b.Save(key, string(raw))
}

// LoadJSON loads key into v.  A value that does not parse is treated as
// absent: the entry is removed and (false, nil) is returned so callers
// never fail on a corrupted cache.
func LoadJSON(b Bridge, key string, v any) (bool, error) {
	raw, ok, err := b.Load(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		_ = b.Remove(key)
		return false, nil
	}
	return true, nil
}
