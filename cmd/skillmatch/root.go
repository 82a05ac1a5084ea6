package main

import (
	"fmt"

	"github.com/skillmatch/backend/config"
	"github.com/skillmatch/backend/internal/infrastructure/cache"
	"github.com/skillmatch/backend/internal/infrastructure/catalog"
	"github.com/skillmatch/backend/internal/infrastructure/document"
	"github.com/skillmatch/backend/internal/infrastructure/posting"
	"github.com/skillmatch/backend/internal/infrastructure/render"
	"github.com/skillmatch/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configFile  string
	catalogFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "skillmatch",
		Short: "Score a resume against job roles",
		Long: "skillmatch extracts technical skills from a resume and compares them with a catalog role, " +
			"a job description file or a job posting URL. It prints the match score and can write a PDF report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file (default: ./config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "Path to a role catalog YAML file (overrides catalog.file)")

	cmd.AddCommand(newRolesCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))

	return cmd
}

// newService builds an analysis service for one command run.
// The returned function releases the in-memory report cache.
func newService(opts *rootOptions, withReports bool) (*usecase.AnalysisService, func(), error) {
	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	catalogFile := cfg.Catalog.File
	if opts.catalogFile != "" {
		catalogFile = opts.catalogFile
	}
	roles, err := catalog.Load(catalogFile)
	if err != nil {
		return nil, nil, err
	}

	memoryCache := cache.NewMemoryCache()

	serviceConfig := usecase.AnalysisServiceConfig{
		ReportTTL:          cfg.Cache.TTL,
		Documents:          document.NewExtractor(cfg.Matching.EnableDebugLogging),
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	}
	if cfg.Fetch.Enabled {
		client := posting.NewClient(posting.Options{
			Timeout:              cfg.Fetch.Timeout,
			UserAgent:            cfg.Fetch.UserAgent,
			RequestsPerMinute:    cfg.RateLimit.Fetch,
			AllowPrivateNetworks: cfg.Fetch.AllowPrivateNetworks,
		})
		client.SetDebug(cfg.Matching.EnableDebugLogging)
		serviceConfig.Fetcher = client
	}
	if withReports {
		serviceConfig.Charts = render.NewChartRenderer()
		serviceConfig.Reports = render.NewReportRenderer()
	}

	service := usecase.NewAnalysisService(roles, memoryCache, serviceConfig)
	return service, func() { memoryCache.Close() }, nil
}
