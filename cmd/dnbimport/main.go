package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/eivindsb/dnbimport/pkg/classify"
	"github.com/eivindsb/dnbimport/pkg/config"
	"github.com/eivindsb/dnbimport/pkg/importer"
	"github.com/eivindsb/dnbimport/pkg/ledger"
	"github.com/eivindsb/dnbimport/pkg/parser"
	"github.com/eivindsb/dnbimport/pkg/service"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "dnbimport",
	Short: "Import DNB Mastercard statements into a beancount ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [flags] <path>",
	Short: "Extract ledger entries from statement files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		importers, err := buildImporters(cfg, logger)
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[0])
		}

		processor := service.NewProcessor(importers, cfg.Output, logger)
		toStdout, _ := cmd.Flags().GetBool("stdout")

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				logger.Warn("failed to stat file", "file", match, "error", err)
				continue
			}

			if info.IsDir() {
				if err := processor.ProcessDirectory(match); err != nil {
					logger.Warn("failed to process directory", "dir", match, "error", err)
				}
				continue
			}

			if debug {
				dumpStatement(logger, match)
			}

			if toStdout {
				if err := extractToStdout(importers, match); err != nil {
					logger.Warn("failed to extract file", "file", match, "error", err)
				}
				continue
			}

			if err := processor.ProcessFile(match); err != nil {
				logger.Warn("failed to process file", "file", match, "error", err)
			}
		}
		return nil
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify <file>",
	Short: "Check whether a file is a DNB Mastercard statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		p := parser.New(newLogger())
		if !p.Identify(args[0]) {
			return fmt.Errorf("not a DNB Mastercard statement: %s", args[0])
		}
		fmt.Println("match")
		return nil
	},
}

var dateCmd = &cobra.Command{
	Use:   "date <file>",
	Short: "Print the statement's reporting date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		importers, err := buildImporters(cfg, logger)
		if err != nil {
			return err
		}
		fmt.Println(importers[0].Date(args[0]).Format("2006-01-02"))
		return nil
	},
}

func newLogger() *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "dnbimport",
	}
	if debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
	}
	return log.NewWithOptions(os.Stderr, opts)
}

// buildImporters creates one importer per configured account, each with its
// own compiled rule engine.
func buildImporters(cfg *config.Config, logger *log.Logger) ([]*importer.Importer, error) {
	accounts := cfg.ActiveAccounts()
	importers := make([]*importer.Importer, 0, len(accounts))

	for _, a := range accounts {
		var patterns []classify.Pattern
		if a.RulesFile != "" {
			rules, err := classify.LoadRules(a.RulesFile)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", a.Name, err)
			}
			patterns = rules.Patterns
		}

		opts := classify.Options{
			DefaultAccount: a.DefaultAccount,
			SharedAccount:  a.SharedAccount,
		}
		if a.DefaultSplitPercentage != nil {
			pct := decimal.NewFromFloat(*a.DefaultSplitPercentage)
			opts.SplitPercentage = &pct
		}

		engine, err := classify.New(patterns, opts)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Name, err)
		}

		importers = append(importers, importer.New(importer.Config{
			AccountName:        a.Name,
			Currency:           a.Currency,
			SkipBalanceForward: a.ShouldSkipBalanceForward(),
			SkipPayments:       a.SkipPayments,
		}, engine, logger))
	}

	return importers, nil
}

func extractToStdout(importers []*importer.Importer, path string) error {
	for _, imp := range importers {
		if !imp.Identify(path) {
			continue
		}
		entries, err := imp.Extract(path)
		if err != nil {
			return err
		}
		return ledger.Write(os.Stdout, entries)
	}
	return fmt.Errorf("no importer claims file %s", path)
}

func dumpStatement(logger *log.Logger, path string) {
	stmt, err := parser.New(logger).ParseStatement(path)
	if err != nil {
		logger.Debug("debug dump failed", "file", path, "error", err)
		return
	}
	pp.Fprintln(os.Stderr, stmt)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging and statement dumps")

	extractCmd.Flags().StringP("output", "o", "", "Output directory (default: same as input file)")
	extractCmd.Flags().Bool("stdout", false, "Print entries to stdout instead of writing files")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(dateCmd)
}

func main() {
	_ = gotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
