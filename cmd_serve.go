package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xxxbrian/geosite2abp/internal/cache"
	"github.com/xxxbrian/geosite2abp/internal/converter"
	"github.com/xxxbrian/geosite2abp/internal/metrics"
	"github.com/xxxbrian/geosite2abp/internal/server"
)

func newServeCommand() *cobra.Command {
	var (
		listen    string
		resultTTL time.Duration
		repoURL   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve converted rule lists over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			if cmd.Flags().Changed("result-ttl") {
				cfg.Server.ResultTTL = resultTTL
			}

			metrics.Register()
			resultCache := cache.NewResultCache(cfg.Server.ResultTTL)
			srv := server.NewServer(newFetcher(cfg), resultCache, server.Config{
				Catalog: cfg.Catalog(),
				Options: converter.Options{Punycode: cfg.Punycode},
				Jobs:    cfg.Jobs,
				RepoURL: repoURL,
			})

			// Start cache cleanup goroutine
			go func() {
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-cmd.Context().Done():
						return
					case <-ticker.C:
						if n := resultCache.Cleanup(); n > 0 {
							logrus.Debugf("Dropped %d expired results", n)
						}
					}
				}
			}()

			httpServer := &http.Server{Addr: cfg.Server.Listen, Handler: srv.Routes()}
			go func() {
				<-cmd.Context().Done()
				_ = httpServer.Close()
			}()

			logrus.Infof("Starting Geosite2ABP server on %s", cfg.Server.Listen)
			logrus.Infof("Result cache TTL: %v, list cache TTL: %v", cfg.Server.ResultTTL, cfg.CacheTTL)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().DurationVar(&resultTTL, "result-ttl", time.Hour, "rendered result cache TTL")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "redirect target for GET /")
	return cmd
}
