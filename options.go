package kasane

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yacchi/kasane/condition"
	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
)

// DefaultConfigName is the configuration label used when none is given.
const DefaultConfigName = "application"

// KeyApplicationID is the runtime property seeded by WithApplicationName.
const KeyApplicationID = "app.id"

// Option configures a Bootstrap.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	configName  string
	appName     string
	configDirs  []string
	application []layer.Child
	overrides   int
	libraries   []layer.Child
	remote      []layer.Name
	seeders     []*Seeder
	system      layer.Layer
	environment layer.Layer
	components  []Component
	features    condition.Features
	errs        []error
}

func defaultOptions() options {
	return options{
		logger:     zap.NewNop(),
		configName: DefaultConfigName,
		features:   condition.NewFeatures(),
	}
}

// WithLogger sets the logger used during activation. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfigName sets the configuration label. It also names the config
// files searched by WithConfigDirs.
func WithConfigName(name string) Option {
	return func(o *options) {
		o.configName = name
	}
}

// WithApplicationName seeds the runtime property app.id with name.
// It is applied after every runtime seeder.
func WithApplicationName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithConfigDirs searches each directory for <configName>.<ext>, trying the
// extensions in format.Extensions order. The first file found in each
// directory is added to APPLICATION after the explicit overrides; earlier
// directories take precedence. Missing files are skipped.
func WithConfigDirs(dirs ...string) Option {
	return func(o *options) {
		o.configDirs = append(o.configDirs, dirs...)
	}
}

// WithApplicationOverrides adds each bag as a static layer of APPLICATION.
// Earlier bags take precedence. The layers are named overrides, overrides#2, ...
func WithApplicationOverrides(bags ...format.Bag) Option {
	return func(o *options) {
		for _, bag := range bags {
			o.overrides++
			o.application = append(o.application, layer.Child{
				Name:  siblingName("overrides", o.overrides),
				Layer: layer.NewMap(bag),
			})
		}
	}
}

// WithApplicationLayer adds l to APPLICATION under name.
func WithApplicationLayer(name string, l layer.Layer) Option {
	return func(o *options) {
		o.application = append(o.application, layer.Child{Name: layer.Name(name), Layer: l})
	}
}

// WithLibraryOverrides adds bag as the overrides of the named library.
// Several override sets for the same library become siblings in one
// sub-composite; the first registered wins on collision.
func WithLibraryOverrides(name string, bag format.Bag) Option {
	return WithLibraryLayer(name, layer.NewMap(bag))
}

// WithLibraryLayer adds l to the overrides of the named library.
func WithLibraryLayer(name string, l layer.Layer) Option {
	return func(o *options) {
		o.libraries = append(o.libraries, layer.Child{Name: layer.Name(name), Layer: l})
	}
}

// WithRuntimeOverrides registers a seeder that writes bag into RUNTIME at activation.
func WithRuntimeOverrides(bag format.Bag) Option {
	return seederOption("runtime-overrides", RoleRuntime, bag)
}

// WithDefaults registers a seeder that writes bag into DEFAULTS at activation.
func WithDefaults(bag format.Bag) Option {
	return seederOption("defaults", RoleDefaults, bag)
}

func seederOption(name string, target Role, bag format.Bag) Option {
	return func(o *options) {
		s, err := NewSeeder(name, target, bag)
		if err != nil {
			o.errs = append(o.errs, err)
			return
		}
		o.seeders = append(o.seeders, s)
	}
}

// WithSeeder registers s. Seeders run at activation in registration order;
// on overlapping keys the last one wins.
func WithSeeder(s *Seeder) Option {
	return func(o *options) {
		if s == nil {
			o.errs = append(o.errs, fmt.Errorf("nil seeder"))
			return
		}
		o.seeders = append(o.seeders, s)
	}
}

// WithRemoteSource adds an empty settable layer named name to REMOTE.
// Remote pollers write into it through Registry.Remote.
func WithRemoteSource(name string) Option {
	return func(o *options) {
		o.remote = append(o.remote, layer.Name(name))
	}
}

// WithSystem replaces the SYSTEM layer. Defaults to system.New(nil).
func WithSystem(l layer.Layer) Option {
	return func(o *options) {
		o.system = l
	}
}

// WithEnvironment replaces the ENVIRONMENT layer. Defaults to env.New().
func WithEnvironment(l layer.Layer) Option {
	return func(o *options) {
		o.environment = l
	}
}

// WithComponent registers a component to be activated when its conditions match.
func WithComponent(c Component) Option {
	return func(o *options) {
		o.components = append(o.components, c)
	}
}

// WithFeatures declares features available to condition.OnFeature and
// condition.OnMissingFeature.
func WithFeatures(names ...string) Option {
	return func(o *options) {
		o.features.Add(names...)
	}
}
