// Geosite2ABP converts geosite domain lists into AdBlock Plus rule lists.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xxxbrian/geosite2abp/internal/cache"
	"github.com/xxxbrian/geosite2abp/internal/config"
	"github.com/xxxbrian/geosite2abp/internal/converter"
	"github.com/xxxbrian/geosite2abp/internal/fetcher"
)

var (
	configPath string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "geosite2abp [rule1] [rule2,rule3 ...] [-o <output_file>]",
		Short: "Convert geosite rule lists to AdBlock Plus rules",
		Example: "  geosite2abp gfw china-list -o my_rules.txt\n" +
			"  geosite2abp serve --listen :8080",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	opts.bind(cmd)

	cmd.AddCommand(newServeCommand())
	return cmd
}

// loadConfig reads the config file and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return nil
}

// newFetcher picks the local directory fetcher when source_dir is set and
// the caching HTTP fetcher otherwise.
func newFetcher(cfg *config.Config) converter.Fetcher {
	if cfg.SourceDir != "" {
		logrus.Infof("Reading rule lists from %s", cfg.SourceDir)
		return fetcher.NewDir(cfg.SourceDir)
	}

	bodyCache := cache.NewBodyCache(cfg.CacheTTL)
	if cfg.CachePath != "" {
		bodyCache.SetPersistPath(cfg.CachePath)
		if err := bodyCache.LoadFromFile(cfg.CachePath); err != nil {
			if !os.IsNotExist(err) {
				logrus.Warnf("Failed to load body cache from %s: %v", cfg.CachePath, err)
			}
		} else {
			logrus.Infof("Loaded %d cached lists from %s", bodyCache.Len(), cfg.CachePath)
		}
	}
	return fetcher.NewHTTP(cfg.Timeout, cfg.UserAgent, bodyCache)
}
