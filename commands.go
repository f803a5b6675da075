package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal/crawler"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/services/store"
	"github.com/kartfirsat/campaignworker/services/worker"

	"github.com/spf13/cobra"
)

func newRootCmd(code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "campaignworker",
		Short:         "Collects credit card campaigns from Turkish bank websites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newScrapeCmd(code),
		newCheckCmd(),
		newSourcesCmd(),
		newMigrateCmd(),
	)
	return root
}

// loadConfig reads and validates the environment configuration and sources
func loadConfig() (*config.Config, config.Sources, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sources, nil
}

func newScrapeCmd(code *int) *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the configured sources once and reconcile the campaign store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.ForWorker()

			cfg, sources, err := loadConfig()
			if err != nil {
				return err
			}
			selected, err := sources.Select(ids)
			if err != nil {
				return err
			}

			log.Info().
				Str("environment", cfg.Environment).
				Strs("sources", selected.IDs()).
				Int("concurrency", cfg.WorkerConcurrency).
				Msg("Starting run")

			services, err := initializeServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Cleanup()

			crawlers := crawler.CreateCrawlers(cfg, selected, services.Dependencies())
			if len(crawlers) == 0 {
				return fmt.Errorf("no crawlers were created")
			}

			w := worker.NewWorker(crawlers, services.Events, helpers.NewLogger(cfg.ErrorLogFile), cfg.WorkerConcurrency,
				worker.WithPushgateway(cfg.PushgatewayURL),
				worker.WithEnvironment(cfg.Environment))
			report := w.Run(ctx)
			report.Print(cmd.OutOrStdout())

			*code = report.ExitCode()
			log.Info().Str("run_id", report.RunID).Int("exit_code", *code).Msg("Run finished")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ids, "sources", nil, "comma separated source ids to scrape (default: all)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show the number of active campaigns per card",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.ActiveCampaignsByCard(ctx)
			if err != nil {
				return err
			}
			total, err := st.ActiveCampaignCount(ctx)
			if err != nil {
				return err
			}
			printActivity(cmd.OutOrStdout(), rows, total)
			return nil
		},
	}
}

func printActivity(w io.Writer, rows []store.CardActivity, total int64) {
	bank := ""
	for _, r := range rows {
		if r.BankSlug != bank {
			bank = r.BankSlug
			fmt.Fprintf(w, "%s\n", bank)
		}
		fmt.Fprintf(w, "  %-24s %-16s %6d\n", r.CardSlug, r.CardName, r.Active)
	}
	fmt.Fprintf(w, "active campaigns: %d\n", total)
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources and their card keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := config.LoadSources(config.LoadConfig().SourcesFile)
			if err != nil {
				return err
			}
			printSources(cmd.OutOrStdout(), sources)
			return nil
		},
	}
}

func printSources(w io.Writer, sources config.Sources) {
	for _, src := range sources {
		strategies := "dedicated"
		if _, ok := crawler.SiteFor(src.ID); !ok {
			strategies = "generic"
		}
		render := "http"
		if src.NeedsBrowser {
			render = "browser"
		}
		fmt.Fprintf(w, "%-12s %-16s %s (%s, %s strategies)\n", src.ID, src.Name, src.URL, render, strategies)
		for _, c := range src.Cards {
			fmt.Fprintf(w, "    %-24s %s\n", c.Slug, strings.Join(c.Keywords, ", "))
		}
	}
}

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, sources, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.ForStore().Info().Msg("Schema is up to date")

			if !seed {
				return nil
			}
			if err := st.Seed(ctx, seedBanks(sources)); err != nil {
				return err
			}
			logger.ForStore().Info().Int("banks", len(sources)).Msg("Seeded banks and cards")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "create banks and cards for the configured sources")
	return cmd
}
