// chunkdump decodes every dimension column chunk of one blocklet region and
// writes the materialized values to CSV. The blocklet's column offsets,
// region end and declared value widths come from a JSON manifest, as emitted
// by the metadata layer.
package main

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Daemonyz/carbondata/internal/chunk"
	"github.com/Daemonyz/carbondata/internal/config"
	"github.com/Daemonyz/carbondata/internal/datastore"
	"github.com/Daemonyz/carbondata/internal/logging"
)

// Manifest describes one blocklet region: where each dimension column's
// chunk starts, where the region ends, and each column's declared value
// width (<= 0 means variable width).
type Manifest struct {
	File          string  `json:"file"`
	ColumnOffsets []int64 `json:"column_offsets"`
	RegionEnd     int64   `json:"region_end"`
	ValueWidths   []int   `json:"value_widths"`
}

func main() {
	// Command line flags
	manifestPath := flag.String("manifest", "", "Blocklet manifest JSON file")
	dataFile := flag.String("file", "", "Region data file (overrides the manifest's file field)")
	output := flag.String("output", "", "Output CSV file (default: <output_dir>/<region>.csv)")
	configPath := flag.String("config", "", "Config file path")
	firstColumn := flag.Int("first-column", 0, "First column index to dump")
	lastColumn := flag.Int("last-column", -1, "Last column index to dump (-1 = last)")

	flag.Parse()

	if *manifestPath == "" {
		log.Fatal("Error: -manifest parameter is required")
	}

	cfg := config.LoadOrDefault(*configPath)

	logger, err := logging.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	logging.SetGlobal(logger)
	runLog := logger.With("tool", "chunkdump", "run_id", uuid.NewString())

	manifest, err := loadManifest(*manifestPath)
	if err != nil {
		runLog.Fatal("failed to load manifest", "error", err)
	}

	regionFile := manifest.File
	if *dataFile != "" {
		regionFile = *dataFile
	}
	if regionFile == "" {
		runLog.Fatal("no data file: set the manifest's file field or pass -file")
	}
	if !filepath.IsAbs(regionFile) {
		regionFile = filepath.Join(cfg.Reader.DataDir, regionFile)
	}

	offsets, err := datastore.NewBlockletOffsets(manifest.ColumnOffsets, manifest.RegionEnd)
	if err != nil {
		runLog.Fatal("invalid manifest offsets", "error", err)
	}

	last := *lastColumn
	if last < 0 {
		last = offsets.ColumnCount() - 1
	}

	outputFile := *output
	if outputFile == "" {
		base := strings.TrimSuffix(filepath.Base(regionFile), filepath.Ext(regionFile))
		outputFile = filepath.Join(cfg.Reader.OutputDir, base+".csv")
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		runLog.Fatal("failed to create output directory", "error", err)
	}

	rows, err := dumpRegion(runLog, regionFile, offsets, manifest.ValueWidths, *firstColumn, last, outputFile)
	if err != nil {
		runLog.Fatal("dump failed", "error", err)
	}

	runLog.Info("dump complete", "file", regionFile, "output", outputFile, "rows", rows)
	fmt.Printf("Wrote %d rows to %s\n", rows, outputFile)
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.ColumnOffsets) == 0 {
		return nil, fmt.Errorf("manifest has no column offsets")
	}
	if len(m.ValueWidths) != len(m.ColumnOffsets) {
		return nil, fmt.Errorf("manifest has %d value widths for %d columns",
			len(m.ValueWidths), len(m.ColumnOffsets))
	}
	return &m, nil
}

// dumpRegion reads columns first..last with one grouped read, decodes every
// page and streams the values to a CSV file. Returns value rows written.
func dumpRegion(runLog *logging.Logger, regionFile string, offsets *datastore.BlockletOffsets,
	widths []int, first, last int, outputFile string) (int, error) {

	reader, err := chunk.NewReader(regionFile, offsets, widths, runLog)
	if err != nil {
		return 0, err
	}

	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	chunks, err := reader.ReadRawChunksInGroup(fr, first, last)
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	out, err := os.Create(outputFile)
	if err != nil {
		return 0, err
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"column", "page", "row", "value"}); err != nil {
		return 0, err
	}

	rows := 0
	for _, c := range chunks {
		width := widths[c.ColumnIndex()]
		for pageIdx := 0; pageIdx < c.PageCount(); pageIdx++ {
			page, err := c.DecodePage(pageIdx)
			if err != nil {
				return rows, err
			}
			for row := 0; row < page.RowCount(); row++ {
				value := page.ValueAt(row)
				record := []string{
					strconv.Itoa(c.ColumnIndex()),
					strconv.Itoa(pageIdx),
					strconv.Itoa(row),
					formatValue(value, width),
				}
				if err := w.Write(record); err != nil {
					return rows, err
				}
				rows++
			}
		}
		runLog.Debug("dumped column", "column", c.ColumnIndex(), "pages", c.PageCount())
	}

	w.Flush()
	return rows, w.Error()
}

// formatValue renders fixed-width values (dictionary codes) as hex and
// variable-width values as text.
func formatValue(value []byte, width int) string {
	if width > 0 {
		return hex.EncodeToString(value)
	}
	return string(value)
}
