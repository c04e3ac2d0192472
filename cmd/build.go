package cmd

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/internal/config"
	"github.com/omnipathdb/metabopkn/internal/observability"
	"github.com/omnipathdb/metabopkn/internal/store"
	"github.com/omnipathdb/metabopkn/pkg/blacklist"
	"github.com/omnipathdb/metabopkn/pkg/export"
	"github.com/omnipathdb/metabopkn/pkg/format"
	"github.com/omnipathdb/metabopkn/pkg/pkn"
	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// newBuildCmd creates the `build` command: collect, translate, blacklist,
// format, export.
func newBuildCmd(holder *configHolder) *cobra.Command {
	var (
		organism       int
		subset         string
		scoreThreshold int

		noStitch     bool
		noTCDB       bool
		noSLC        bool
		noBRENDA     bool
		noMRCLinksDB bool
		noGEM        bool
		noRecon3D    bool

		noTranslate   bool
		noBlacklist   bool
		blacklistFile string

		noOrphans    bool
		noConnectors bool

		output     string
		sep        string
		allColumns bool

		save bool
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the prior-knowledge network and exports it to CSV/TSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := observability.GetLogger().Named("build")
			cfg := holder.cfg

			// Flags override the config file only when explicitly set.
			flags := cmd.Flags()
			if flags.Changed("organism") {
				cfg.SetOrganism(organism)
			}
			if flags.Changed("subset") {
				cfg.SetSubset(subset)
			}
			if flags.Changed("score-threshold") {
				cfg.SetSTITCHScoreThreshold(scoreThreshold)
			}
			for name, disabled := range map[string]bool{
				"stitch":     noStitch,
				"tcdb":       noTCDB,
				"slc":        noSLC,
				"brenda":     noBRENDA,
				"mrclinksdb": noMRCLinksDB,
				"gem":        noGEM,
				"recon3d":    noRecon3D,
			} {
				if disabled {
					if err := cfg.SetResourceEnabled(name, false); err != nil {
						return err
					}
				}
			}
			if noTranslate {
				cfg.SetTranslateIDs(false)
			}
			if noBlacklist {
				cfg.SetApplyBlacklist(false)
			}
			if noOrphans {
				cfg.SetIncludeOrphans(false)
			}
			if noConnectors {
				cfg.SetIncludeConnectors(false)
			}
			if flags.Changed("output") {
				cfg.SetOutputPath(output)
			}
			if flags.Changed("sep") {
				cfg.SetOutputSeparator(sep)
			}
			if allColumns {
				cfg.SetOutputAllColumns(true)
			}
			if blacklistFile != "" {
				cfg.BuildCfg.BlacklistFile = blacklistFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			rows, err := runBuild(cmd, cfg, log)
			if err != nil {
				return err
			}

			if save {
				if err := persistRun(ctx, cfg, rows, log); err != nil {
					return err
				}
			}

			return writeOutput(cfg, rows, log)
		},
	}

	f := buildCmd.Flags()
	f.IntVar(&organism, "organism", 9606, "NCBI taxonomy ID")
	f.StringVar(&subset, "subset", config.SubsetAll, "functional subset: all, transporters, receptors, allosteric, enzyme_metabolite")
	f.IntVar(&scoreThreshold, "score-threshold", 700, "STITCH combined score threshold")

	f.BoolVar(&noStitch, "no-stitch", false, "disable the STITCH resource")
	f.BoolVar(&noTCDB, "no-tcdb", false, "disable the TCDB resource")
	f.BoolVar(&noSLC, "no-slc", false, "disable the SLC resource")
	f.BoolVar(&noBRENDA, "no-brenda", false, "disable the BRENDA resource")
	f.BoolVar(&noMRCLinksDB, "no-mrclinksdb", false, "disable the MRCLinksDB resource")
	f.BoolVar(&noGEM, "no-gem", false, "disable the GEM resource")
	f.BoolVar(&noRecon3D, "no-recon3d", false, "disable the Recon3D resource")

	f.BoolVar(&noTranslate, "no-translate", false, "skip ID translation, keep source-specific identifiers")
	f.BoolVar(&noBlacklist, "no-blacklist", false, "skip the curated blacklist")
	f.StringVar(&blacklistFile, "blacklist", "", "blacklist YAML file")

	f.BoolVar(&noOrphans, "no-orphans", false, "drop orphan pseudo-enzyme nodes")
	f.BoolVar(&noConnectors, "no-connector-edges", false, "exclude connector edges from the output")

	f.StringVar(&output, "output", "cosmos_pkn.csv", "output file; extension selects the separator")
	f.StringVar(&sep, "sep", "", `override the column separator (e.g. "\t")`)
	f.BoolVar(&allColumns, "all-columns", false, "write all columns instead of source, target, sign")

	f.BoolVar(&save, "save", false, "persist the run to PostgreSQL (requires database.url)")

	return buildCmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) ([]schemas.Interaction, error) {
	ctx := cmd.Context()
	build := cfg.Build()

	sources, err := buildSources(cfg, log)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no resources with record files configured; nothing to build")
	}

	opts := pkn.Options{
		Organism:       build.Organism,
		TranslateIDs:   build.TranslateIDs,
		ApplyBlacklist: build.ApplyBlacklist,
		IncludeOrphans: build.IncludeOrphans,
	}
	if build.ApplyBlacklist && build.BlacklistFile != "" {
		entries, err := blacklist.Load(build.BlacklistFile)
		if err != nil {
			return nil, err
		}
		opts.Blacklist = entries
	}

	var registry *resolve.Registry
	if build.TranslateIDs {
		clientOpts := []resolve.ClientOption{resolve.WithRateLimit(cfg.HTTP().RateLimit)}
		if dir := cfg.HTTP().CacheDir; dir != "" {
			clientOpts = append(clientOpts, resolve.WithCacheDir(dir))
		}
		client := resolve.NewClient(cfg.HTTP().Timeout, log, clientOpts...)
		registry = resolve.NewRegistry(client, log)
	}

	builder := pkn.NewBuilder(registry, opts, log)
	log.Info("building network",
		zap.Int("organism", build.Organism),
		zap.String("subset", build.Subset),
		zap.Int("resources", len(sources)),
	)

	rows, report, err := builder.Build(ctx, sources)
	if err != nil {
		return nil, err
	}

	switch build.Subset {
	case config.SubsetTransporters:
		rows = pkn.TransporterRows(rows)
	case config.SubsetReceptors:
		rows = pkn.ReceptorRows(rows)
	case config.SubsetAllosteric:
		rows = pkn.AllostericRows(rows)
	case config.SubsetEnzymeMetabolite:
		rows = pkn.EnzymeMetaboliteRows(rows)
	}

	formatted, stats, err := format.New(log).Format(rows, build.IncludeOrphans)
	if err != nil {
		return nil, err
	}

	if !build.IncludeConnectors {
		formatted = pkn.WithoutConnectors(formatted)
	}

	log.Info("network built",
		zap.Int("translated_edges", report.Total-report.Blacklisted),
		zap.Int("blacklisted", report.Blacklisted),
		zap.Int("main_edges", len(formatted)-stats.Connectors),
		zap.Int("connector_edges", stats.Connectors),
		zap.Int("total", len(formatted)),
	)
	return formatted, nil
}

// buildSources turns the resource configuration into record sources. An
// enabled resource with no record file is skipped with a warning rather than
// failing the build.
func buildSources(cfg *config.Config, log *zap.Logger) ([]pkn.Source, error) {
	res := cfg.Resources()

	type entry struct {
		name    string
		enabled bool
		path    string
		opts    []pkn.FileSourceOption
	}
	entries := []entry{
		{"stitch", res.STITCH.Enabled, res.STITCH.Path,
			[]pkn.FileSourceOption{pkn.WithMinScore(res.STITCH.ScoreThreshold)}},
		{"tcdb", res.TCDB.Enabled, res.TCDB.Path, nil},
		{"slc", res.SLC.Enabled, res.SLC.Path, nil},
		{"brenda", res.BRENDA.Enabled, res.BRENDA.Path, nil},
		{"mrclinksdb", res.MRCLinksDB.Enabled, res.MRCLinksDB.Path, nil},
		{"gem", res.GEM.Enabled, res.GEM.Path,
			[]pkn.FileSourceOption{pkn.WithGEMModels(res.GEM.Models)}},
		{"recon3d", res.Recon3D.Enabled, res.Recon3D.Path, nil},
	}

	var sources []pkn.Source
	for _, e := range entries {
		if !e.enabled {
			continue
		}
		if e.path == "" {
			log.Warn("resource enabled but no record file configured, skipping",
				zap.String("resource", e.name))
			continue
		}
		sources = append(sources, pkn.NewFileSource(e.name, e.path, e.opts...))
	}
	return sources, nil
}

// persistRun saves the finished network to PostgreSQL.
func persistRun(ctx context.Context, cfg *config.Config, rows []schemas.Interaction, log *zap.Logger) error {
	url := cfg.Database().URL
	if url == "" {
		return fmt.Errorf("--save requires database.url (or METABOPKN_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	s, err := store.New(ctx, pool, log)
	if err != nil {
		return err
	}

	run := store.NewRun(cfg.Build().Organism, cfg.Build().Subset)
	return s.SaveRun(ctx, run, rows)
}

func writeOutput(cfg *config.Config, rows []schemas.Interaction, log *zap.Logger) error {
	out := cfg.Output()

	sepRune, err := parseSeparator(out.Separator)
	if err != nil {
		return err
	}
	opts := export.Options{AllColumns: out.AllColumns, Separator: sepRune}

	if err := export.WriteFile(out.Path, rows, opts); err != nil {
		return err
	}
	log.Info("network exported",
		zap.String("path", out.Path),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// parseSeparator turns the --sep flag value into a rune. The escape "\t" is
// accepted because shells make typing a literal tab awkward.
func parseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
