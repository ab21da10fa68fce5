package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/eivindsb/dnbimport/pkg/importer"
	"github.com/eivindsb/dnbimport/pkg/ledger"
	"github.com/eivindsb/dnbimport/pkg/spreadsheet"
)

// Processor drives file discovery and import for a set of registered
// importers. One bad file never aborts the run.
type Processor struct {
	importers  []*importer.Importer
	outputPath string
	logger     *log.Logger
}

func NewProcessor(importers []*importer.Importer, outputPath string, logger *log.Logger) *Processor {
	return &Processor{
		importers:  importers,
		outputPath: outputPath,
		logger:     logger,
	}
}

func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !spreadsheet.Supported(path) {
			continue
		}
		if err := p.ProcessFile(path); err != nil {
			p.logger.Error("failed to process file", "file", path, "error", err)
		}
	}

	return nil
}

// ProcessFile runs the first importer that claims the file and writes the
// rendered entries next to the input, or under the configured output path.
func (p *Processor) ProcessFile(path string) error {
	imp := p.identify(path)
	if imp == nil {
		p.logger.Debug("no importer claims file", "file", path)
		return nil
	}

	p.logger.Info("processing file", "file", path, "account", imp.Account())

	entries, err := imp.Extract(path)
	if err != nil {
		return fmt.Errorf("error extracting statement: %w", err)
	}

	outFile := p.determineOutputPath(imp, path)
	output, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer output.Close()

	if err := ledger.Write(output, entries); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}

	p.logger.Info("processed file", "input", path, "output", outFile, "entries", len(entries))
	return nil
}

func (p *Processor) identify(path string) *importer.Importer {
	for _, imp := range p.importers {
		if imp.Identify(path) {
			return imp
		}
	}
	return nil
}

func (p *Processor) determineOutputPath(imp *importer.Importer, path string) string {
	name := imp.Filename(path) + ".beancount"
	if p.outputPath != "" {
		return filepath.Join(p.outputPath, name)
	}
	return filepath.Join(filepath.Dir(path), name)
}
