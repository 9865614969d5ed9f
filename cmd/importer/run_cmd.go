package main

import (
	"errors"
	"fmt"

	"cybershield/internal/bootstrap"
	"cybershield/internal/config"
	"cybershield/internal/importer"
	"cybershield/internal/metrics"
	"cybershield/internal/repository"
	"cybershield/internal/service"
	"cybershield/internal/workbook"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type runFlags struct {
	envFiles          []string
	root              string
	source            string
	policy            string
	legacyCityCountry bool
	mapping           string
	dsn               string
	driver            string
	asJSON            bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import all workbooks in one transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.envFiles...)
			if err != nil {
				return withCode(exitUsage, err)
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return withCode(exitUsage, err)
			}
			log := cfg.Logger()

			opts, err := bootstrap.ImportOptions(cfg.Import)
			if err != nil {
				return withCode(exitUsage, err)
			}
			source, err := bootstrap.Source(cmd.Context(), cfg)
			if err != nil {
				return withCode(exitSource, err)
			}
			db, err := bootstrap.OpenDB(cfg.Database, log)
			if err != nil {
				return withCode(exitDatabase, err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			repo := repository.NewRepository(db)
			if err := repo.Migrate(); err != nil {
				return withCode(exitDatabase, fmt.Errorf("migrate: %w", err))
			}

			im := importer.New(repo, source, opts, log.WithField("component", "importer"))
			imports := service.NewImportService(repo, im, metrics.New(prometheus.NewRegistry()), log)
			result, err := imports.Run(cmd.Context(), "cli")
			switch {
			case errors.Is(err, workbook.ErrNotFound):
				return withCode(exitSource, err)
			case err != nil:
				return withCode(exitImport, err)
			}

			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, result.Report.String()); err != nil {
				return err
			}
			if result.Report.Teams > 0 {
				fmt.Fprintf(out, "Внимание: команды победителей создаются при каждом запуске (%d новых)\n", result.Report.Teams)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&f.envFiles, "env", nil, "Env files to load (default .env, .env.local)")
	cmd.Flags().StringVar(&f.root, "root", "", "Directory with the workbooks (overrides IMPORT_ROOT)")
	cmd.Flags().StringVar(&f.source, "source", "", "Workbook source: dir, s3 or gsheets (overrides IMPORT_SOURCE)")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Activities without an event: strict or tolerant (overrides IMPORT_POLICY)")
	cmd.Flags().BoolVar(&f.legacyCityCountry, "legacy-city-country", false, "Link each city to the country with the same row number")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", "YAML city-country map (overrides IMPORT_CITY_COUNTRY_MAP)")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "Database DSN (overrides DB_DSN)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Database driver: postgres or sqlite (overrides DB_DRIVER)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the run and report as JSON")
	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Import.Root = f.root
	}
	if flags.Changed("source") {
		cfg.Import.Source = f.source
	}
	if flags.Changed("policy") {
		cfg.Import.Policy = f.policy
	}
	if flags.Changed("legacy-city-country") {
		cfg.Import.LegacyCityCountry = f.legacyCityCountry
	}
	if flags.Changed("mapping") {
		cfg.Import.CityCountryMap = f.mapping
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = f.dsn
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = f.driver
	}
}
