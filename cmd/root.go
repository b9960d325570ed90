// Package cmd provides the command-line interface for thematic.
//
// Configuration System:
//
//	Settings are read with clear precedence, highest first:
//	1. Command-line flags (--content, --log-level, etc.)
//	2. THEMATIC_<SECTION>_<OPTION> environment variables, including those
//	   loaded from .env files (--env-file)
//	3. The configuration file: --config, else THEMATIC_CONFIG_FILE, else
//	   .thematic.yml in the working directory
//	4. Built-in defaults
//
// Content:
//
//	Commands run against a resource store. With --content the store is
//	loaded from a directory tree; --bundle adds YAML content bundles on top.
//	Without either the store starts empty.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/thematic/internal/config"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/resource"
	"github.com/conneroisu/thematic/internal/services"
)

// EnvConfigFile names the environment variable holding a config file path.
const EnvConfigFile = "THEMATIC_CONFIG_FILE"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	cfgFile  string
	envFiles []string
	bundles  []string
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd returns the thematic command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "thematic",
		Short: "Resolve, compile and cache themable component assets",
		Long: `Thematic resolves component types, framework views, variations and
themes over an override/base resource tree, and aggregates the CSS, JS and
HTML of every ui framework, vendor library and theme into a compiled-output
cache.

Quick Start:
  thematic frameworks --content ./content
  thematic resolve view thematic/components/button bootstrap
  thematic render /apps/site/page/button1 --content ./content
  thematic build --content ./content
  thematic output /libs/thematic/ui-frameworks/bootstrap css
  thematic watch --content ./content`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is .thematic.yml, can also use "+EnvConfigFile+" env var)")
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "environment files loaded before reading THEMATIC_ variables (default .env)")
	flags.StringSliceVarP(&opts.bundles, "bundle", "b", nil, "YAML content bundle loaded into the store (repeatable)")
	flags.StringP("content", "C", "", "content directory loaded into the store")
	flags.String("mount", "/", "store path the content directory is mounted at")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		newResolveCmd(opts),
		newScriptCmd(opts),
		newRenderCmd(opts),
		newOutputCmd(opts),
		newBuildCmd(opts),
		newPurgeCmd(opts),
		newFrameworksCmd(opts),
		newThemesCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// initConfig loads the configuration sources and binds the persistent flags
// to their viper keys.
func initConfig(cmd *cobra.Command, opts *rootOptions) error {
	cfgFile := opts.cfgFile
	if cfgFile == "" {
		cfgFile = os.Getenv(EnvConfigFile)
	}
	if err := config.Init(cfgFile, opts.envFiles...); err != nil {
		return err
	}

	bindings := map[string]string{
		"content.dir":   "content",
		"content.mount": "mount",
		"log.level":     "log-level",
		"log.format":    "log-format",
	}
	for key, name := range bindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := viper.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	return nil
}

// openEngine loads the configuration and wires an engine over the content
// directory and bundles. Logs go to the command's error stream.
func openEngine(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*services.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logger := logging.NewLogger(logCfg)

	engine, err := services.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := loadBundles(ctx, engine.Store, opts.bundles); err != nil {
		return nil, err
	}
	return engine, nil
}

// loadBundles stages every node of the YAML bundles and commits them once.
func loadBundles(ctx context.Context, store resource.Store, bundles []string) error {
	if len(bundles) == 0 {
		return nil
	}
	for _, file := range bundles {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading bundle: %w", err)
		}
		nodes, err := resource.LoadYAML(data, "/")
		if err != nil {
			return fmt.Errorf("loading bundle %s: %w", file, err)
		}
		for _, n := range nodes {
			if err := store.Put(n); err != nil {
				return fmt.Errorf("loading bundle %s: %w", file, err)
			}
		}
	}
	return store.Commit(ctx)
}
