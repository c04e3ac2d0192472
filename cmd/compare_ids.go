package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/internal/observability"
	"github.com/omnipathdb/metabopkn/pkg/pkn"
	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/translate"
)

// newCompareIDsCmd creates the `compare-ids` command: collect the raw
// untranslated network and report per-resource ChEBI vs HMDB metabolite ID
// coverage, so switching the canonical vocabulary is a data-driven decision.
func newCompareIDsCmd(holder *configHolder) *cobra.Command {
	var (
		organism       int
		scoreThreshold int
		output         string

		noStitch     bool
		noTCDB       bool
		noSLC        bool
		noBRENDA     bool
		noMRCLinksDB bool
		noGEM        bool
		noRecon3D    bool
	)

	compareCmd := &cobra.Command{
		Use:   "compare-ids",
		Short: "Compares ChEBI vs HMDB metabolite ID coverage across resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := observability.GetLogger().Named("compare")
			cfg := holder.cfg

			flags := cmd.Flags()
			if flags.Changed("organism") {
				cfg.SetOrganism(organism)
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
			if err := cfg.Validate(); err != nil {
				return err
			}

			sources, err := buildSources(cfg, log)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no resources with record files configured; nothing to compare")
			}

			clientOpts := []resolve.ClientOption{resolve.WithRateLimit(cfg.HTTP().RateLimit)}
			if dir := cfg.HTTP().CacheDir; dir != "" {
				clientOpts = append(clientOpts, resolve.WithCacheDir(dir))
			}
			client := resolve.NewClient(cfg.HTTP().Timeout, log, clientOpts...)
			registry := resolve.NewRegistry(client, log)

			rows, _, err := pkn.NewBuilder(nil, pkn.Options{}, log).Collect(ctx, sources)
			if err != nil {
				return err
			}

			tr := translate.New(registry, cfg.Build().Organism, log)
			coverage := tr.CompareVocabularies(ctx, rows)

			if err := writeCoverage(output, coverage); err != nil {
				return err
			}
			log.Info("coverage report written",
				zap.String("path", output),
				zap.Int("resources", len(coverage)-1),
			)
			return nil
		},
	}

	f := compareCmd.Flags()
	f.IntVar(&organism, "organism", 9606, "NCBI taxonomy ID")
	f.IntVar(&scoreThreshold, "score-threshold", 700, "STITCH combined score threshold")
	f.StringVar(&output, "output", "metabolite_id_coverage.csv", "coverage report path")

	f.BoolVar(&noStitch, "no-stitch", false, "disable the STITCH resource")
	f.BoolVar(&noTCDB, "no-tcdb", false, "disable the TCDB resource")
	f.BoolVar(&noSLC, "no-slc", false, "disable the SLC resource")
	f.BoolVar(&noBRENDA, "no-brenda", false, "disable the BRENDA resource")
	f.BoolVar(&noMRCLinksDB, "no-mrclinksdb", false, "disable the MRCLinksDB resource")
	f.BoolVar(&noGEM, "no-gem", false, "disable the GEM resource")
	f.BoolVar(&noRecon3D, "no-recon3d", false, "disable the Recon3D resource")

	return compareCmd
}

var coverageColumns = []string{
	"resource", "total_edges", "unique_metabolites",
	"chebi_success", "hmdb_success",
	"chebi_pct", "hmdb_pct",
	"chebi_only", "hmdb_only", "both",
}

func writeCoverage(path string, rows []translate.ResourceCoverage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(coverageColumns); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Resource,
			strconv.Itoa(r.Edges),
			strconv.Itoa(r.UniqueMetabolites),
			strconv.Itoa(r.ChebiResolved),
			strconv.Itoa(r.HMDBResolved),
			pct(r.ChebiResolved, r.UniqueMetabolites),
			pct(r.HMDBResolved, r.UniqueMetabolites),
			strconv.Itoa(r.ChebiOnly),
			strconv.Itoa(r.HMDBOnly),
			strconv.Itoa(r.Both),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing row %s: %w", r.Resource, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pct(n, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(100*float64(n)/float64(total), 'f', 1, 64)
}
