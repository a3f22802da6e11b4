package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aidantay/TranscriptCoder/internal/duckdb"
)

var queryFlags = []runFlag{
	{key: "results_db", name: "results-db", usage: "DuckDB results file written by run --results-db"},
}

func newQueryCmd() *cobra.Command {
	var (
		transcript string
		chrom      string
		clearAll   bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up inferred transcripts in a results database",
		Example: `  transcriptcoder query --results-db results.duckdb --transcript ENST00000335137_1
  transcriptcoder query --results-db results.duckdb --chromosome chr1
  transcriptcoder query --results-db results.duckdb --clear`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(viper.GetViper(), cmd, queryFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("results_db")
			if path == "" {
				return errors.New("no results database: set --results-db")
			}

			selected := 0
			for _, set := range []bool{transcript != "", chrom != "", clearAll} {
				if set {
					selected++
				}
			}
			if selected != 1 {
				return errors.New("exactly one of --transcript, --chromosome or --clear is required")
			}

			store, err := duckdb.Open(path)
			if err != nil {
				return fmt.Errorf("open results database: %w", err)
			}
			defer store.Close()

			if clearAll {
				if err := store.ClearResults(); err != nil {
					return fmt.Errorf("clear results: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared results in %s\n", path)
				return nil
			}

			var results []duckdb.Result
			if transcript != "" {
				results, err = store.LookupTranscript(transcript)
			} else {
				results, err = store.SearchByChromosome(chrom)
			}
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().String("results-db", "", queryFlags[0].usage)
	cmd.Flags().StringVar(&transcript, "transcript", "", "Show every stored result for this transcript id")
	cmd.Flags().StringVar(&chrom, "chromosome", "", "Show the stored results on this chromosome")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every stored result")

	return cmd
}

func printResults(w io.Writer, results []duckdb.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSCRIPT\tDATABASE\tCHROM\tSTART\tSTOP\tSTRAND\tEXONS\tCDS\tPROTEIN_LENGTH")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%s\t%d\n",
			r.TranscriptID, r.Database, r.Chrom, r.Start, r.Stop, r.Strand,
			r.ExonCount, codingSpan(r), len(r.Protein))
	}
	return tw.Flush()
}

// codingSpan renders the genomic extent between the codons, low to high.
func codingSpan(r duckdb.Result) string {
	lo := min(r.StartCodonStart, r.StopCodonStart)
	hi := max(r.StartCodonStop, r.StopCodonStop)
	return fmt.Sprintf("%d-%d", lo, hi)
}
