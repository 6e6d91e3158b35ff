package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/config"
	"github.com/conduit-lang/gosass/internal/cli/ui"
	"github.com/conduit-lang/gosass/internal/compiler/cache"
	"github.com/conduit-lang/gosass/internal/watch"
)

type watchOptions struct {
	compileFlags
	output string
	serve  bool
	port   int
	host   string
}

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile stylesheets when they change",
		Long: `Watch a directory of stylesheets and recompile on change.

The watch command compiles every entry stylesheet once, then monitors the
directory and:
  • Recompiles only the entries a changed file affects
  • Recompiles everything when an unknown partial changes
  • Removes the CSS of deleted entries

With --serve it also serves the output under /css/ and pushes updates to
browsers that include /__reload.js.

When cache.redis_url is configured, compiled CSS is shared through Redis.`,
		Example: `  # Watch the input_dir from gosass.yml
  gosass watch

  # Watch scss/ into public/css with live reload on port 8080
  gosass watch scss -o public/css --serve --port 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: output_dir from gosass.yml)")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Serve the output with live reload")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Development server port (default: server.port)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Development server host (default: server.host)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *watchOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sassOpts, err := opts.options(cmd, cfg)
	if err != nil {
		return err
	}

	inputDir := cfg.InputDir
	if len(args) > 0 {
		inputDir = args[0]
	}
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", inputDir)
	}
	outputDir := cfg.OutputDir
	if opts.output != "" {
		outputDir = opts.output
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	builder, err := watch.NewBuilder(watch.BuilderConfig{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Options:   sassOpts,
		Store:     store,
		CacheSize: cfg.Cache.Size,
		Logger:    sassOpts.Logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		return serve(ctx, cmd, cfg, inputDir, builder, opts)
	}
	return watchOnly(ctx, cmd, cfg, inputDir, builder)
}

// openStore returns the Redis store when one is configured, otherwise nil
// so the builder keeps compiled CSS in memory.
func openStore(cfg *config.Config) (cache.Store, func(), error) {
	if cfg.Cache.RedisURL == "" {
		return nil, func() {}, nil
	}
	storeCfg := cache.DefaultConfig()
	if cfg.Cache.TTL > 0 {
		storeCfg.TTL = cfg.Cache.TTL
	}
	store, err := cache.NewRedisStore(cfg.Cache.RedisURL, storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config, inputDir string, builder *watch.Builder, opts *watchOptions) error {
	port, host := cfg.Server.Port, cfg.Server.Host
	if opts.port != 0 {
		port = opts.port
	}
	if opts.host != "" {
		host = opts.host
	}

	devServer, err := watch.NewDevServer(watch.DevServerConfig{
		Host:     host,
		Port:     port,
		Root:     inputDir,
		Patterns: cfg.Watch.Patterns,
		Ignored:  cfg.Watch.Ignored,
		Debounce: cfg.Watch.Debounce,
		Builder:  builder,
	})
	if err != nil {
		return fmt.Errorf("failed to create dev server: %w", err)
	}

	out := cmd.OutOrStdout()
	banner := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(out)
	banner.Fprintln(out, "gosass development server")
	fmt.Fprintf(out, "   Stylesheets: http://%s:%d/css/\n", host, port)
	fmt.Fprintf(out, "   Live reload: <script src=\"http://%s:%d/__reload.js\"></script>\n", host, port)
	fmt.Fprintln(out)
	color.New(color.FgYellow).Fprintln(out, "Press Ctrl+C to stop")

	if err := devServer.Start(ctx); err != nil {
		return fmt.Errorf("dev server: %w", err)
	}
	color.New(color.FgGreen).Fprintln(out, "Goodbye!")
	return nil
}

func watchOnly(ctx context.Context, cmd *cobra.Command, cfg *config.Config, inputDir string, builder *watch.Builder) error {
	report := func(result *watch.BuildResult, err error) {
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(err.Error(), noColor))
			return
		}
		for _, fe := range result.Errors {
			fmt.Fprint(cmd.ErrOrStderr(), ui.CompileError(fe.Path, fe.Err, noColor))
		}
		for _, path := range result.Written {
			ui.WriteSuccess(cmd.OutOrStdout(), "wrote "+path, noColor)
		}
		for _, path := range result.Removed {
			fmt.Fprint(cmd.OutOrStdout(), ui.Info("removed "+path, noColor))
		}
	}

	report(builder.Build(ctx))

	watcher, err := watch.NewFileWatcher(watch.WatcherConfig{
		Root:     inputDir,
		Patterns: cfg.Watch.Patterns,
		Ignored:  cfg.Watch.Ignored,
		Debounce: cfg.Watch.Debounce,
		Logger:   builder.Logger(),
	}, func(files []string) error {
		start := time.Now()
		result, err := builder.Rebuild(ctx, files)
		report(result, err)
		if err == nil {
			fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("rebuilt in %s", time.Since(start).Round(time.Millisecond)), noColor))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("watching %s (Ctrl+C to stop)", inputDir), noColor))

	<-ctx.Done()
	return watcher.Stop()
}
