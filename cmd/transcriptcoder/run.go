package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aidantay/TranscriptCoder/internal/config"
	"github.com/aidantay/TranscriptCoder/internal/duckdb"
	"github.com/aidantay/TranscriptCoder/internal/geneticcode"
	"github.com/aidantay/TranscriptCoder/internal/genome"
	"github.com/aidantay/TranscriptCoder/internal/output"
	"github.com/aidantay/TranscriptCoder/internal/runner"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// runFlag binds a command-line flag to a config key.
type runFlag struct {
	key       string
	name      string
	shorthand string
	usage     string
	isInt     bool
}

var runFlags = []runFlag{
	{key: "reference", name: "reference", shorthand: "s", usage: "Reference GTF with known start and stop codons"},
	{key: "target", name: "target", shorthand: "q", usage: "Target GTF to infer codons for"},
	{key: "translation_table", name: "translation-table", shorthand: "t", usage: "Genetic code table file (default: standard code)"},
	{key: "genome", name: "genome", shorthand: "c", usage: "Directory of chromosome FASTA files, or a single FASTA file"},
	{key: "database_name", name: "database-name", shorthand: "d", usage: "Database label used in protein FASTA headers"},
	{key: "output", name: "output", shorthand: "o", usage: "Protein FASTA output file"},
	{key: "gff", name: "gff", shorthand: "p", usage: "GFF3 output file"},
	{key: "accession", name: "accession", shorthand: "m", usage: "Accession list output file"},
	{key: "log_file", name: "log-file", shorthand: "l", usage: "Write JSON logs to this file instead of stderr"},
	{key: "log_level", name: "log-level", usage: "Log level: debug, info, warn, error"},
	{key: "workers", name: "workers", usage: "Transcript workers per chromosome (0 = one per CPU)", isInt: true},
	{key: "chromosome_jobs", name: "chromosome-jobs", usage: "Chromosomes processed concurrently", isInt: true},
	{key: "chromosome", name: "chromosome", usage: "Only process transcripts on this chromosome"},
	{key: "results_db", name: "results-db", usage: "Also store results in this DuckDB file"},
	{key: "cache_dir", name: "cache-dir", usage: "Cache parsed annotations in this directory"},
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Infer coding regions and translate target transcripts",
		Example: `  transcriptcoder run -s gencode.gtf -q assembly.gtf -c hg38/ -d gencode -o proteins.fa
  transcriptcoder run -s ref.gtf -q target.gtf -c hg38.fa -d ref -o out.fa -p out.gff -m out.acc
  TRANSCRIPTCODER_GENOME=hg38/ transcriptcoder run -s ref.gtf -q target.gtf -d ref -o out.fa`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(viper.GetViper(), cmd, runFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			return runInference(cmd.Context(), cfg)
		},
	}

	defaults := config.NewDefaultConfig()
	flags := cmd.Flags()
	for _, f := range runFlags {
		switch {
		case f.isInt && f.key == "chromosome_jobs":
			flags.Int(f.name, defaults.ChromosomeJobs, f.usage)
		case f.isInt:
			flags.Int(f.name, defaults.Workers, f.usage)
		case f.key == "log_level":
			flags.String(f.name, defaults.LogLevel, f.usage)
		default:
			flags.StringP(f.name, f.shorthand, "", f.usage)
		}
	}

	return cmd
}

// bindFlags binds each flag to its config key on v.
func bindFlags(v *viper.Viper, cmd *cobra.Command, flags []runFlag) error {
	var errs []error
	for _, f := range flags {
		if err := v.BindPFlag(f.key, cmd.Flags().Lookup(f.name)); err != nil {
			errs = append(errs, fmt.Errorf("bind flag --%s: %w", f.name, err))
		}
	}
	return errors.Join(errs...)
}

func runInference(ctx context.Context, cfg *config.Config) (err error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	table := geneticcode.Standard()
	if cfg.TranslationTable != "" {
		table, err = geneticcode.Load(cfg.TranslationTable)
		if err != nil {
			return fmt.Errorf("load translation table: %w", err)
		}
		logger.Info("loaded translation table",
			zap.String("path", cfg.TranslationTable),
			zap.Int("codons", table.Len()))
	}

	reference, err := loadTranscriptome(cfg, "reference", cfg.Reference, logger)
	if err != nil {
		return err
	}
	target, err := loadTranscriptome(cfg, "target", cfg.Target, logger)
	if err != nil {
		return err
	}

	r := runner.New(genome.NewFASTALoader(cfg.Genome), table)
	r.SetLogger(logger)
	r.SetWorkers(cfg.EffectiveWorkers())
	r.SetChromosomeJobs(cfg.ChromosomeJobs)

	records, err := r.Run(ctx, reference, target)
	if err != nil {
		return err
	}
	logger.Info("inference complete",
		zap.Int("targets", target.Len()),
		zap.Int("inferred", len(records)))

	writers, closeAll, err := openWriters(cfg, logger)
	defer func() {
		err = errors.Join(err, closeAll())
	}()
	if err != nil {
		return err
	}

	return runner.Write(writers, records)
}

// loadTranscriptome parses a GTF, going through the transcriptome cache
// when a cache directory is configured. A chromosome filter bypasses the
// cache, which only holds whole annotations.
func loadTranscriptome(cfg *config.Config, name, path string, logger *zap.Logger) (*transcriptome.Transcriptome, error) {
	loader := transcriptome.NewGTFLoader(path)
	loader.SetLogger(logger)

	if cfg.Chromosome != "" {
		tr, err := loader.LoadChromosome(cfg.Chromosome)
		if err != nil {
			return nil, fmt.Errorf("load %s annotation: %w", name, err)
		}
		logLoaded(logger, name, tr, zap.String("chromosome", cfg.Chromosome))
		return tr, nil
	}

	if cfg.CacheDir == "" {
		tr, err := loader.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s annotation: %w", name, err)
		}
		logLoaded(logger, name, tr)
		return tr, nil
	}

	fp, err := duckdb.StatFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s annotation: %w", name, err)
	}

	tc := duckdb.NewTranscriptomeCache(cfg.CacheDir)
	if tc.Valid(name, fp) {
		tr, err := tc.Load(name)
		if err == nil {
			logLoaded(logger, name, tr, zap.Bool("cached", true))
			return tr, nil
		}
		logger.Warn("ignoring unreadable annotation cache", zap.String("name", name), zap.Error(err))
		tc.Clear(name)
	}

	tr, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s annotation: %w", name, err)
	}
	logLoaded(logger, name, tr)

	if err := tc.Write(name, tr, fp); err != nil {
		logger.Warn("could not write annotation cache", zap.String("name", name), zap.Error(err))
	}
	return tr, nil
}

func logLoaded(logger *zap.Logger, name string, tr *transcriptome.Transcriptome, fields ...zap.Field) {
	coding := 0
	for _, t := range tr.Transcripts {
		if t.IsCoding() {
			coding++
		}
	}
	logger.Info("loaded annotation", append([]zap.Field{
		zap.String("name", name),
		zap.Int("transcripts", tr.Len()),
		zap.Int("coding", coding),
	}, fields...)...)
}

// openWriters creates the configured outputs. The returned func closes
// every file and the results database.
func openWriters(cfg *config.Config, logger *zap.Logger) (output.MultiWriter, func() error, error) {
	var (
		writers output.MultiWriter
		closers []func() error
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	create := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		closers = append(closers, f.Close)
		return f, nil
	}

	f, err := create(cfg.Output)
	if err != nil {
		return nil, closeAll, err
	}
	pw := output.NewProteinWriter(f, cfg.DatabaseName)
	pw.SetLogger(logger)
	writers = append(writers, pw)

	if cfg.GFF != "" {
		f, err := create(cfg.GFF)
		if err != nil {
			return nil, closeAll, err
		}
		writers = append(writers, output.NewGFFWriter(f))
	}

	if cfg.Accession != "" {
		f, err := create(cfg.Accession)
		if err != nil {
			return nil, closeAll, err
		}
		writers = append(writers, output.NewAccessionWriter(f))
	}

	if cfg.ResultsDB != "" {
		store, err := duckdb.Open(cfg.ResultsDB)
		if err != nil {
			return nil, closeAll, fmt.Errorf("open results database: %w", err)
		}
		closers = append(closers, store.Close)
		writers = append(writers, duckdb.NewResultWriter(store, cfg.DatabaseName))
	}

	return writers, closeAll, nil
}
