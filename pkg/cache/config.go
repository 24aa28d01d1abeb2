package cache

import "time"

// TTLPolicy bounds entry lifetimes for a store.
type TTLPolicy struct {
	// DefaultTTL is used when Set is called with a ttl of 0
	DefaultTTL time.Duration

	// MaxTTL caps requested ttls. 0 means no cap.
	MaxTTL time.Duration
}

// Validate checks that the durations are consistent.
func (p TTLPolicy) Validate() error {
	if p.DefaultTTL < 0 || p.MaxTTL < 0 {
		return ErrInvalidTTL
	}
	if p.MaxTTL > 0 && p.DefaultTTL > p.MaxTTL {
		return ErrInvalidTTL
	}
	return nil
}

// EffectiveTTL returns the ttl actually applied for a requested ttl.
func (p TTLPolicy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
