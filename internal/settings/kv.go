package settings

import "context"

// Logical keys of the two persisted user settings.
const (
	KeyAPIKey       = "openai_api_key"
	KeyInstructions = "custom_instructions"
)

// KV is a named string store. Last write wins; a missing key reads as "".
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Router sends secret keys to one store and everything else to another, so
// the credential never lands in the plain settings file.
type Router struct {
	Plain   KV
	Secret  KV
	secrets map[string]bool
}

func NewRouter(plain, secret KV, secretKeys ...string) *Router {
	if len(secretKeys) == 0 {
		secretKeys = []string{KeyAPIKey}
	}
	keys := make(map[string]bool, len(secretKeys))
	for _, key := range secretKeys {
		keys[key] = true
	}
	return &Router{Plain: plain, Secret: secret, secrets: keys}
}

func (r *Router) Get(ctx context.Context, key string) (string, error) {
	return r.route(key).Get(ctx, key)
}

func (r *Router) Set(ctx context.Context, key, value string) error {
	return r.route(key).Set(ctx, key, value)
}

func (r *Router) route(key string) KV {
	if r.secrets[key] {
		return r.Secret
	}
	return r.Plain
}
