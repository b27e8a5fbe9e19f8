package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xxxbrian/geosite2abp/internal/config"
	"github.com/xxxbrian/geosite2abp/internal/converter"
	"github.com/xxxbrian/geosite2abp/internal/report"
	"github.com/xxxbrian/geosite2abp/internal/source"
)

var errNoItems = errors.New("no rule items given")

type convertOptions struct {
	output    string
	jobs      int
	timeout   time.Duration
	sourceDir string
	cachePath string
	punycode  bool
	progress  bool
}

func (o *convertOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", config.DefaultOutput, "output file")
	f.IntVarP(&o.jobs, "jobs", "j", 1, "root items resolved concurrently")
	f.DurationVar(&o.timeout, "timeout", 0, "per-list fetch timeout")
	f.StringVar(&o.sourceDir, "source-dir", "", "read lists from this directory instead of the network")
	f.StringVar(&o.cachePath, "cache-path", "", "persist fetched lists to this file")
	f.BoolVar(&o.punycode, "punycode", false, "convert internationalized domains to punycode")
	f.BoolVar(&o.progress, "progress", false, "show a progress bar")
}

// apply overrides config values with flags the user set explicitly.
func (o *convertOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = o.output
	}
	if f.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if f.Changed("source-dir") {
		cfg.SourceDir = o.sourceDir
	}
	if f.Changed("cache-path") {
		cfg.CachePath = o.cachePath
	}
	if f.Changed("punycode") {
		cfg.Punycode = o.punycode
	}
}

func runConvert(cmd *cobra.Command, args []string, opts *convertOptions) error {
	items := source.ParseItems(args)
	if len(items) == 0 {
		_ = cmd.Usage()
		return errNoItems
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := report.Create(cfg.Output)
	if err != nil {
		return err
	}

	var done func(converter.Outcome)
	if opts.progress {
		bar := progressbar.Default(int64(len(items)), "resolving")
		done = func(converter.Outcome) { _ = bar.Add(1) }
	}

	outcomes := converter.ResolveAll(cmd.Context(), items, cfg.Catalog(), newFetcher(cfg),
		converter.Options{Punycode: cfg.Punycode}, cfg.Jobs, done)
	if err := cmd.Context().Err(); err != nil {
		_ = out.Close()
		return fmt.Errorf("interrupted before all rule lists were resolved: %w", err)
	}

	if err := writeDocument(out, items, outcomes); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logrus.Infof("Wrote %s", cfg.Output)
	return nil
}

func writeDocument(out *report.Writer, items []string, outcomes []converter.Outcome) error {
	if err := out.WriteHeader(items, time.Now()); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			logrus.WithField("item", o.Item).Errorf("An unexpected error occurred: %v", o.Err)
			continue
		}
		if err := out.WriteBlock(o.Item, o.Lines); err != nil {
			return err
		}
		logrus.Infof("%s -> %s (Rules: %d)", o.Item, o.RootURL, o.RuleCount)
	}
	return nil
}
