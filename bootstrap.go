package kasane

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/yacchi/kasane/condition"
	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
	"github.com/yacchi/kasane/layer/env"
	"github.com/yacchi/kasane/layer/system"
)

// Component is an optional unit activated at bootstrap when its conditions match.
type Component struct {
	// Name identifies the component. Once activated, the name is bound and
	// visible to condition.OnBinding in later components.
	Name string

	// Conditions must all match for the component to be activated.
	Conditions []condition.Condition

	// Init is called with the activated root. May be nil.
	Init func(*Root) error
}

// Bootstrap collects layers, seeders and components, then activates them once.
//
// Example:
//
//	b := kasane.NewBootstrap(
//	    kasane.WithApplicationOverrides(format.Bag{"server.port": 8080}),
//	    kasane.WithDefaults(format.Bag{"server.host": "0.0.0.0"}),
//	)
//	root, err := b.Activate()
type Bootstrap struct {
	mu        sync.Mutex
	opts      options
	activated bool
	root      *Root
}

// NewBootstrap creates a bootstrap configured by opts.
func NewBootstrap(opts ...Option) *Bootstrap {
	b := &Bootstrap{opts: defaultOptions()}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// New creates a bootstrap and activates it.
func New(opts ...Option) (*Root, error) {
	return NewBootstrap(opts...).Activate()
}

// Register applies more options. Returns ErrAlreadyActivated after Activate.
func (b *Bootstrap) Register(opts ...Option) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activated {
		return ErrAlreadyActivated
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return nil
}

// Root returns the activated root, or ErrNotActivated.
func (b *Bootstrap) Root() (*Root, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.root == nil {
		return nil, ErrNotActivated
	}
	return b.root, nil
}

// Activate builds the root composite, runs every seeder once and activates
// the components whose conditions match. It can be called only once; later
// calls return ErrAlreadyActivated.
//
// Structural problems (duplicate layer names, malformed config files, invalid
// seeders) fail before anything is seeded and return a nil root. Component
// failures are joined and returned after every component has been considered,
// together with the root, which Root also returns from then on.
func (b *Bootstrap) Activate() (*Root, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activated {
		return nil, ErrAlreadyActivated
	}
	b.activated = true

	o := &b.opts
	logger := o.logger.With(zap.String("component", "kasane"))

	if len(o.errs) > 0 {
		return nil, errors.Join(o.errs...)
	}

	set, err := o.layerSet(logger)
	if err != nil {
		return nil, err
	}
	root, err := Build(set)
	if err != nil {
		return nil, err
	}
	reg := root.registry

	for _, s := range o.seeders {
		dst, err := reg.Settable(s.Target())
		if err != nil {
			return nil, fmt.Errorf("seeder %q: %w", s.Name(), err)
		}
		s.apply(dst)
		logger.Debug("seeder applied",
			zap.String("seeder", s.Name()),
			zap.Stringer("target", s.Target()),
			zap.Int("keys", len(s.values)),
		)
	}
	if o.appName != "" {
		reg.Runtime().Set(KeyApplicationID, o.appName)
	}

	for _, role := range reg.roles() {
		l, _ := reg.Layer(role)
		fields := []zap.Field{zap.Stringer("role", role)}
		if e, ok := l.(layer.Enumerable); ok && role != RoleEnvironment {
			fields = append(fields, zap.Int("keys", len(e.Keys())))
		}
		logger.Info("layer ready", fields...)
	}

	b.root = root
	err = root.activateComponents(o.components, o.features, logger)
	return root, err
}

// layerSet resolves the options into the layers handed to Build.
func (o *options) layerSet(logger *zap.Logger) (LayerSet, error) {
	set := LayerSet{
		System:      o.system,
		Environment: o.environment,
		Application: append([]layer.Child(nil), o.application...),
		Libraries:   o.libraries,
		ConfigName:  o.configName,
	}
	if set.System == nil {
		set.System = system.New(nil)
	}
	if set.Environment == nil {
		set.Environment = env.New()
	}
	for _, name := range o.remote {
		set.Remote = append(set.Remote, layer.Child{Name: name, Layer: layer.NewSettable()})
	}

	files, err := findConfigFiles(o.configDirs, o.configName)
	if err != nil {
		return LayerSet{}, err
	}
	for i, f := range files {
		set.Application = append(set.Application, layer.Child{
			Name:  siblingName(layer.Name(o.configName), i+1),
			Layer: layer.NewMap(f.bag),
		})
		logger.Debug("config file loaded", zap.String("path", f.path), zap.Int("keys", len(f.bag)))
	}
	return set, nil
}

type configFile struct {
	path string
	bag  format.Bag
}

// findConfigFiles loads the first <name>.<ext> present in each directory.
func findConfigFiles(dirs []string, name string) ([]configFile, error) {
	var files []configFile
	for _, dir := range dirs {
		for _, ext := range format.Extensions {
			path := filepath.Join(dir, name+ext)
			bag, err := format.LoadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			files = append(files, configFile{path: path, bag: bag})
			break
		}
	}
	return files, nil
}

// activateComponents runs the components whose conditions match, in
// registration order. A component whose Init fails is not bound.
func (r *Root) activateComponents(components []Component, features condition.Features, logger *zap.Logger) error {
	ctx := &activationContext{root: r, bound: make(map[string]bool), features: features}

	var errs []error
	for _, c := range components {
		ok, failed := condition.Evaluate(ctx, c.Conditions...)
		if !ok {
			logger.Debug("component skipped",
				zap.String("name", c.Name),
				zap.Stringer("condition", failed),
			)
			continue
		}
		if c.Init != nil {
			if err := c.Init(r); err != nil {
				errs = append(errs, fmt.Errorf("component %q: %w", c.Name, err))
				continue
			}
		}
		ctx.bound[c.Name] = true
		r.components = append(r.components, c.Name)
		logger.Debug("component activated", zap.String("name", c.Name))
	}
	return errors.Join(errs...)
}

type activationContext struct {
	root     *Root
	bound    map[string]bool
	features condition.Features
}

func (c *activationContext) Get(key string) (string, bool) {
	return c.root.Get(key)
}

func (c *activationContext) Bound(name string) bool {
	return c.bound[name]
}

func (c *activationContext) HasFeature(name string) bool {
	return c.features.Has(name)
}
