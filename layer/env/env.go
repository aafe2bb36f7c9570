// Package env provides a layer that reads the process environment.
//
// The layer is a pass-through: every lookup consults the live environment,
// so changes made with os.Setenv are visible immediately and nothing is cached.
package env

import (
	"os"
	"slices"
	"strings"

	"github.com/yacchi/kasane/layer"
)

var (
	osLookupEnv = os.LookupEnv
	osEnviron   = os.Environ
)

// Layer resolves keys against environment variables.
//
// A key is first looked up verbatim ("PATH", "HOME"). When a prefix is
// configured, a dotted key is also mapped to an environment variable name by
// upper-casing it, replacing '.' and '-' with '_' and prepending the prefix.
//
// Example: with prefix "APP_", key "server.port" is read from APP_SERVER_PORT.
type Layer struct {
	prefix string
}

// Ensure Layer implements layer.Layer and layer.Enumerable.
var (
	_ layer.Layer      = (*Layer)(nil)
	_ layer.Enumerable = (*Layer)(nil)
)

// Option configures a Layer.
type Option func(*Layer)

// WithPrefix enables dotted-key mapping using the given variable name prefix.
func WithPrefix(prefix string) Option {
	return func(l *Layer) {
		l.prefix = prefix
	}
}

// New creates an environment layer.
//
// Example:
//
//	envLayer := env.New()                        // verbatim names only
//	envLayer := env.New(env.WithPrefix("APP_"))  // also server.port -> APP_SERVER_PORT
func New(opts ...Option) *Layer {
	l := &Layer{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Prefix returns the configured variable name prefix.
func (l *Layer) Prefix() string {
	return l.prefix
}

// Lookup returns the value of the environment variable for key.
func (l *Layer) Lookup(key string) (any, bool) {
	if v, ok := osLookupEnv(key); ok {
		return v, true
	}
	if l.prefix == "" {
		return nil, false
	}
	if v, ok := osLookupEnv(l.prefix + VarName(key)); ok {
		return v, true
	}
	return nil, false
}

// Keys lists the keys this layer can resolve. Without a prefix these are the
// raw variable names. With a prefix only the prefixed variables are listed,
// converted to dotted lower-case keys (APP_SERVER_PORT -> server.port).
func (l *Layer) Keys() []string {
	var keys []string
	for _, kv := range osEnviron() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if l.prefix == "" {
			keys = append(keys, name)
			continue
		}
		if rest, ok := strings.CutPrefix(name, l.prefix); ok && rest != "" {
			keys = append(keys, KeyName(rest))
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// VarName converts a dotted key to an environment variable name without prefix.
// Example: "server.read-timeout" -> "SERVER_READ_TIMEOUT"
func VarName(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-':
			return '_'
		}
		return r
	}, strings.ToUpper(key))
}

// KeyName converts an environment variable name (without prefix) to a dotted key.
// Example: "SERVER_PORT" -> "server.port"
func KeyName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}
