// Package main provides the kasane CLI tool.
//
// Usage:
//
//	kasane [flags] <command> [arguments]
//
// Commands:
//
//	get       Resolve one key
//	dump      Print every resolvable key
//	layers    Show the layer tree
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yacchi/kasane"
	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/internal/logging"
	"github.com/yacchi/kasane/layer/env"
	"github.com/yacchi/kasane/layer/system"
	"github.com/yacchi/kasane/remote"
	"github.com/yacchi/kasane/remote/file"
	"github.com/yacchi/kasane/remote/redis"
	"github.com/yacchi/kasane/remote/ssm"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	configName  *string
	appName     *string
	configDirs  *[]string
	appFiles    *[]string
	libFiles    *[]string
	runtimeFile *string
	defaultFile *string
	defines     *[]string
	envPrefix   *string

	remoteFile  *string
	redisAddr   *string
	redisKey    *string
	ssmPath     *string
	ssmDecrypt  *bool
	watch       *time.Duration
	metricsAddr *string
	logLevel    *string

	get       *kingpin.CmdClause
	getKey    *string
	getDef    *string
	getOrigin *bool

	dump       *kingpin.CmdClause
	dumpPrefix *string
	dumpOrigin *bool

	layers *kingpin.CmdClause
}

func newCLI(stdout, stderr io.Writer) *cli {
	app := kingpin.New("kasane", "Inspect a layered configuration.")
	app.Version(version)
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	app.Terminate(nil)

	c := &cli{app: app}
	c.configName = app.Flag("name", "Configuration file base name searched in --config-dir.").Default(kasane.DefaultConfigName).String()
	c.appName = app.Flag("app-name", "Application name published as app.id.").String()
	c.configDirs = app.Flag("config-dir", "Directory searched for configuration files; earlier wins.").Strings()
	c.appFiles = app.Flag("app", "Application override file; earlier wins.").Strings()
	c.libFiles = app.Flag("lib", "Library defaults as NAME=FILE.").Strings()
	c.runtimeFile = app.Flag("runtime", "File seeded into RUNTIME.").String()
	c.defaultFile = app.Flag("defaults", "File seeded into DEFAULTS.").String()
	c.defines = app.Flag("define", "System property as key=value.").Short('D').Strings()
	c.envPrefix = app.Flag("env-prefix", "Environment variable prefix for dotted keys.").Envar("KASANE_ENV_PREFIX").String()

	c.remoteFile = app.Flag("remote-file", "Remote properties file.").String()
	c.redisAddr = app.Flag("remote-redis", "Redis server address for remote properties.").String()
	c.redisKey = app.Flag("remote-redis-key", "Redis hash holding remote properties.").Default(redis.DefaultConfig().Key).String()
	c.ssmPath = app.Flag("remote-ssm", "SSM Parameter Store path for remote properties.").String()
	c.ssmDecrypt = app.Flag("remote-ssm-decrypt", "Decrypt SecureString parameters.").Bool()
	c.watch = app.Flag("watch", "Keep polling remote sources at this interval and print changes.").Duration()
	c.metricsAddr = app.Flag("metrics-addr", "Serve Prometheus metrics on this address while watching.").String()
	c.logLevel = app.Flag("log-level", "Log level.").Default("warn").Envar("LOG_LEVEL").String()

	c.get = app.Command("get", "Resolve one key.")
	c.getKey = c.get.Arg("key", "Property key.").Required().String()
	c.getDef = c.get.Flag("default", "Value printed when the key is missing.").String()
	c.getOrigin = c.get.Flag("origin", "Print the supplying layer.").Bool()

	c.dump = app.Command("dump", "Print every resolvable key.")
	c.dumpPrefix = c.dump.Flag("prefix", "Only keys starting with this prefix.").String()
	c.dumpOrigin = c.dump.Flag("origin", "Print the supplying layer.").Bool()

	c.layers = app.Command("layers", "Show the layer tree.")
	return c
}

// remoteSource pairs a REMOTE child name with the fetcher that fills it.
type remoteSource struct {
	name    string
	fetcher remote.Fetcher
	close   func() error
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := newCLI(stdout, stderr)
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}
	if command == "" {
		// --help or --version was handled by kingpin.
		return nil
	}

	logger, err := logging.New(*c.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sources, err := c.remoteSources(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sources {
			if s.close != nil {
				_ = s.close()
			}
		}
	}()

	opts, err := c.options(logger, sources)
	if err != nil {
		return err
	}
	root, err := kasane.New(opts...)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := remote.NewMetrics("kasane", reg)
	group := remote.NewGroup()
	for _, s := range sources {
		target, _ := root.Registry().Remote(s.name)
		group.Add(remote.NewPoller(s.name, s.fetcher, target,
			remote.WithInterval(*c.watch),
			remote.WithLogger(logger),
			remote.WithMetrics(metrics),
		))
	}
	if err := group.PollOnce(ctx); err != nil {
		return err
	}

	switch command {
	case c.get.FullCommand():
		err = printGet(stdout, root, *c.getKey, *c.getDef, *c.getOrigin)
	case c.dump.FullCommand():
		printDump(stdout, root, *c.dumpPrefix, *c.dumpOrigin)
	case c.layers.FullCommand():
		printLayers(stdout, root)
	}
	if err != nil {
		return err
	}

	if *c.watch <= 0 || group.Len() == 0 {
		return nil
	}
	return c.watchChanges(ctx, stdout, root, group, reg, logger)
}

// options translates the flags into bootstrap options.
func (c *cli) options(logger *zap.Logger, sources []remoteSource) ([]kasane.Option, error) {
	defs := make([]string, 0, len(*c.defines))
	for _, d := range *c.defines {
		defs = append(defs, "-D"+d)
	}
	sys, err := system.FromArgs(defs)
	if err != nil {
		return nil, err
	}

	opts := []kasane.Option{
		kasane.WithLogger(logger),
		kasane.WithConfigName(*c.configName),
		kasane.WithSystem(sys),
		kasane.WithEnvironment(env.New(env.WithPrefix(*c.envPrefix))),
	}
	if *c.appName != "" {
		opts = append(opts, kasane.WithApplicationName(*c.appName))
	}
	if len(*c.configDirs) > 0 {
		opts = append(opts, kasane.WithConfigDirs(*c.configDirs...))
	}

	for _, path := range *c.appFiles {
		bag, err := format.LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kasane.WithApplicationOverrides(bag))
	}
	for _, spec := range *c.libFiles {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --lib %q: want NAME=FILE", spec)
		}
		bag, err := format.LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kasane.WithLibraryOverrides(name, bag))
	}
	if *c.runtimeFile != "" {
		bag, err := format.LoadFile(*c.runtimeFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kasane.WithRuntimeOverrides(bag))
	}
	if *c.defaultFile != "" {
		bag, err := format.LoadFile(*c.defaultFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kasane.WithDefaults(bag))
	}

	for _, s := range sources {
		opts = append(opts, kasane.WithRemoteSource(s.name))
	}
	return opts, nil
}

// remoteSources opens the fetchers requested on the command line in
// REMOTE precedence order: file, redis, ssm.
func (c *cli) remoteSources(ctx context.Context, logger *zap.Logger) ([]remoteSource, error) {
	var sources []remoteSource

	if *c.remoteFile != "" {
		f, err := file.New(*c.remoteFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, remoteSource{name: "file", fetcher: f})
	}

	if *c.redisAddr != "" {
		cfg := redis.DefaultConfig()
		cfg.Addr = *c.redisAddr
		cfg.Key = *c.redisKey
		f, err := redis.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, remoteSource{name: "redis", fetcher: f, close: f.Close})
	}

	if *c.ssmPath != "" {
		f := ssm.New(*c.ssmPath, ssm.WithDecryption(*c.ssmDecrypt))
		sources = append(sources, remoteSource{name: "ssm", fetcher: f})
	}
	return sources, nil
}

// watchChanges runs the pollers until ctx is done and prints every key whose
// resolved value changed.
func (c *cli) watchChanges(ctx context.Context, w io.Writer, root *kasane.Root, group *remote.Group, reg *prometheus.Registry, logger *zap.Logger) error {
	var mu sync.Mutex
	for _, name := range root.Registry().RemoteSources() {
		target, _ := root.Registry().Remote(name)
		unsubscribe := target.Subscribe(func(keys []string) {
			mu.Lock()
			defer mu.Unlock()
			for _, key := range keys {
				fmt.Fprintf(w, "%s=%s\n", key, root.GetOr(key, ""))
			}
		})
		defer unsubscribe()
	}

	if *c.metricsAddr != "" {
		srv := &http.Server{
			Addr:              *c.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("watching remote sources", zap.Duration("interval", *c.watch), zap.Int("sources", group.Len()))
	return group.Run(ctx)
}
