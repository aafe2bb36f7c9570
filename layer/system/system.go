// Package system provides a layer holding properties of the running process.
//
// Two kinds of properties are exposed. Built-in properties describe the host
// process (os.name, user.dir, pid, ...). Definitions are explicit key=value
// pairs handed to the process, typically as -Dkey=value command-line
// arguments. Definitions shadow built-ins with the same key.
package system

import (
	"fmt"
	"maps"
	"os"
	"os/user"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/yacchi/kasane/layer"
)

// Built-in property keys.
const (
	KeyOSName    = "os.name"
	KeyOSArch    = "os.arch"
	KeyGoVersion = "go.version"
	KeyUserDir   = "user.dir"
	KeyUserHome  = "user.home"
	KeyUserName  = "user.name"
	KeyHostName  = "host.name"
	KeyPID       = "pid"
	KeyNumCPU    = "num.cpu"
)

var (
	osGetwd       = os.Getwd
	osUserHomeDir = os.UserHomeDir
	osHostname    = os.Hostname
	userCurrent   = user.Current
)

// Layer is a read-only snapshot of process properties taken at construction.
type Layer struct {
	props map[string]string
}

// Ensure Layer implements layer.Layer and layer.Enumerable.
var (
	_ layer.Layer      = (*Layer)(nil)
	_ layer.Enumerable = (*Layer)(nil)
)

// New captures the built-in properties and merges defs over them.
func New(defs map[string]string) *Layer {
	props := builtins()
	for k, v := range defs {
		props[k] = v
	}
	return &Layer{props: props}
}

// FromArgs builds a layer from -Dkey=value (or --define=key=value) arguments.
// Other arguments are ignored. A definition without '=' sets the key to "true".
//
// Example:
//
//	l, err := system.FromArgs(os.Args[1:])
func FromArgs(args []string) (*Layer, error) {
	defs, err := ParseDefinitions(args)
	if err != nil {
		return nil, err
	}
	return New(defs), nil
}

// ParseDefinitions extracts -Dkey=value definitions from args.
func ParseDefinitions(args []string) (map[string]string, error) {
	defs := make(map[string]string)
	for _, arg := range args {
		var def string
		switch {
		case strings.HasPrefix(arg, "-D"):
			def = arg[2:]
		case strings.HasPrefix(arg, "--define="):
			def = arg[len("--define="):]
		default:
			continue
		}
		key, value, found := strings.Cut(def, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid definition %q: empty key", arg)
		}
		if !found {
			value = "true"
		}
		defs[key] = value
	}
	return defs, nil
}

// Lookup returns the property stored for key.
func (l *Layer) Lookup(key string) (any, bool) {
	v, ok := l.props[key]
	if !ok {
		return nil, false
	}
	return v, true
}

// Keys returns the property keys in ascending order.
func (l *Layer) Keys() []string {
	return slices.Sorted(maps.Keys(l.props))
}

// builtins collects host properties. Properties that cannot be determined are omitted.
func builtins() map[string]string {
	props := map[string]string{
		KeyOSName:    runtime.GOOS,
		KeyOSArch:    runtime.GOARCH,
		KeyGoVersion: runtime.Version(),
		KeyPID:       strconv.Itoa(os.Getpid()),
		KeyNumCPU:    strconv.Itoa(runtime.NumCPU()),
	}
	if dir, err := osGetwd(); err == nil {
		props[KeyUserDir] = dir
	}
	if home, err := osUserHomeDir(); err == nil {
		props[KeyUserHome] = home
	}
	if host, err := osHostname(); err == nil {
		props[KeyHostName] = host
	}
	if u, err := userCurrent(); err == nil {
		props[KeyUserName] = u.Username
	}
	return props
}
