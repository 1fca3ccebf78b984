package flags

import (
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/ratelimit"
)

// AuthFlags holds token signing and rate limiting settings. The signing
// secret comes from the environment by default.
type AuthFlags struct {
	Secret          string
	TokenTTL        time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
}

func NewAuthFlags() *AuthFlags {
	return &AuthFlags{
		Secret:          os.Getenv("LEADBOOK_AUTH_SECRET"),
		TokenTTL:        7 * 24 * time.Hour,
		RateLimit:       20,
		RateLimitWindow: time.Minute,
	}
}

func (f *AuthFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Secret, "auth-secret", f.Secret, "token signing secret (defaults to LEADBOOK_AUTH_SECRET)")
	fs.DurationVar(&f.TokenTTL, "token-ttl", f.TokenTTL, "access token lifetime")
	fs.IntVar(&f.RateLimit, "rate-limit", f.RateLimit, "max throttled actions per window per key")
	fs.DurationVar(&f.RateLimitWindow, "rate-limit-window", f.RateLimitWindow, "rate limit window length")
}

func (f *AuthFlags) GetTokenManager() (*auth.TokenManager, error) {
	return auth.NewTokenManager([]byte(f.Secret), f.TokenTTL)
}

func (f *AuthFlags) GetLimiter() ratelimit.Limiter {
	return ratelimit.NewFixedWindow(f.RateLimit, f.RateLimitWindow)
}
