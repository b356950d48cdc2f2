// Package report turns a finished run into its deliverables: the four
// CSV artifacts and the email notification. It consumes a completed
// runner.Result (or the AbortError of a failed run) and never feeds
// anything back into the run itself.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dnogen/pkg/inventory"
	"dnogen/pkg/logging"
	"dnogen/pkg/runner"
)

// Artifact file names. The unassigned file is the one downstream
// blocking systems ingest; the others are for operators.
const (
	AssignedFile   = "assigned_npa_nxx_x.csv"
	UnassignedFile = "unassigned_npa_nxx_x.csv"
	ABlockFile     = "a_block_analysis.csv"
	SummaryFile    = "lerg_summary.csv"
)

// Artifacts summarizes what WriteAll produced.
type Artifacts struct {
	// Dir is the directory the files were written to.
	Dir string

	// AssignedRows is the row count of the assigned artifact.
	AssignedRows int

	// ABlockRows is the row count of the A-block analysis artifact.
	ABlockRows int

	// AOnlyExchanges counts exchanges whose blocks are assigned by the
	// whole-exchange marker alone.
	AOnlyExchanges int

	// PlanSpace is the full numbering-plan space over the run's areas.
	PlanSpace int

	// PlanUnassigned is the unassigned count over PlanSpace, before
	// condensing.
	PlanUnassigned int

	// CondensedRows is the unassigned count after condensing.
	CondensedRows int

	// TracebackRows is how many traceback records the feed supplied.
	TracebackRows int

	// OutputRows is the row count of the unassigned artifact as written.
	OutputRows int

	// SkippedRows counts rows excluded for invalid digit lengths.
	SkippedRows int
}

// Writer writes the run artifacts into one directory.
type Writer struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

// NewWriter creates a writer targeting dir. The directory is created
// on the first WriteAll if it does not exist.
func NewWriter(dir string) *Writer {
	return &Writer{
		dir:    dir,
		logger: logging.NewLogger("report"),
		now:    time.Now,
	}
}

// WriteAll writes the four artifacts for a completed run. Traceback
// records are merged into the unassigned artifact after the condensed
// feed rows. Artifacts are only ever written for complete runs, so a
// caller holding an AbortError has nothing to pass here.
func (w *Writer) WriteAll(result *runner.Result, traceback []TracebackRecord) (*Artifacts, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	areas := make([]string, 0, len(result.Inventories))
	for area := range result.Inventories {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	art := &Artifacts{Dir: w.dir, TracebackRows: len(traceback)}

	if err := w.writeAssigned(result, areas, art); err != nil {
		return nil, err
	}
	if err := w.writeABlocks(result, areas, art); err != nil {
		return nil, err
	}
	if err := w.writeUnassigned(result, areas, traceback, art); err != nil {
		return nil, err
	}
	if err := w.writeSummary(art); err != nil {
		return nil, err
	}

	w.logger.Info().
		Str("dir", w.dir).
		Int("assigned", art.AssignedRows).
		Int("unassigned", art.OutputRows).
		Int("skipped", art.SkippedRows).
		Msg("artifacts written")

	return art, nil
}

func (w *Writer) writeAssigned(result *runner.Result, areas []string, art *Artifacts) error {
	var assigned []string
	for _, area := range areas {
		assigned = append(assigned, result.Inventories[area].Assigned()...)
	}
	sort.Strings(assigned)
	art.AssignedRows = len(assigned)

	return w.writeCSV(AssignedFile, func(cw *csv.Writer) error {
		if err := cw.Write([]string{"NPA-NXX-X", "Status"}); err != nil {
			return err
		}
		for _, key := range assigned {
			if err := cw.Write([]string{key, "Assigned"}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) writeABlocks(result *runner.Result, areas []string, art *Artifacts) error {
	return w.writeCSV(ABlockFile, func(cw *csv.Writer) error {
		header := []string{"NPA-NXX", "Has_A_Block", "Numeric_Blocks_Explicitly_Listed", "Status"}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, area := range areas {
			for _, ab := range result.Inventories[area].ABlockExchanges() {
				numeric := "None"
				status := "All blocks (0-9) assigned via A-only rule"
				if ab.AOnly {
					art.AOnlyExchanges++
				} else {
					numeric = strings.Join(ab.Numeric, ",")
					status = "Mixed: A block + explicit numeric blocks"
				}
				row := []string{area + "-" + ab.Exchange, "Yes", numeric, status}
				if err := cw.Write(row); err != nil {
					return err
				}
				art.ABlockRows++
			}
		}
		return nil
	})
}

func (w *Writer) writeUnassigned(result *runner.Result, areas []string, traceback []TracebackRecord, art *Artifacts) error {
	var unassigned []string
	for _, area := range areas {
		inv := result.Inventories[area]
		unassigned = append(unassigned, inv.PlanUnassigned()...)
		art.PlanSpace += inv.PlanSize()
	}
	art.PlanUnassigned = len(unassigned)

	condensed := inventory.Condense(unassigned)
	art.CondensedRows = len(condensed)

	// One timestamp for the whole file, in UTC, stamped on every feed
	// row. Traceback rows keep their own creation times.
	stamp := w.now().UTC().Format(time.RFC3339)

	var skipped []string
	err := w.writeCSV(UnassignedFile, func(cw *csv.Writer) error {
		// The ingest endpoint expects no header row.
		for _, entry := range condensed {
			digits := strings.ReplaceAll(entry, "-", "")
			if !validDigitLength(digits) {
				skipped = append(skipped, digits)
				continue
			}
			if err := cw.Write([]string{digits, "LERG Unassigned", stamp}); err != nil {
				return err
			}
			art.OutputRows++
		}
		for _, rec := range traceback {
			if !validDigitLength(rec.Digits) {
				skipped = append(skipped, rec.Digits)
				continue
			}
			if err := cw.Write([]string{rec.Digits, rec.Source, rec.CreatedAt}); err != nil {
				return err
			}
			art.OutputRows++
		}
		return nil
	})
	if err != nil {
		return err
	}

	art.SkippedRows = len(skipped)
	if len(skipped) > 0 {
		sample := skipped
		if len(sample) > 10 {
			sample = sample[:10]
		}
		w.logger.Warn().
			Int("count", len(skipped)).
			Strs("sample", sample).
			Msg("rows with invalid digit lengths excluded from unassigned artifact")
	}
	return nil
}

func (w *Writer) writeSummary(art *Artifacts) error {
	return w.writeCSV(SummaryFile, func(cw *csv.Writer) error {
		rows := [][]string{
			{"Category", "Count", "Percentage"},
			{"Total Theoretically Possible", strconv.Itoa(art.PlanSpace), "100.00%"},
			{"Assigned (Including A-only blocks)", strconv.Itoa(art.AssignedRows), pct(art.AssignedRows, art.PlanSpace)},
			{"Unassigned", strconv.Itoa(art.PlanUnassigned), pct(art.PlanUnassigned, art.PlanSpace)},
			{"NPA-NXX with A-only (all blocks assigned)", strconv.Itoa(art.AOnlyExchanges), "-"},
			{"Condensed Unassigned Entries", strconv.Itoa(art.CondensedRows), pct(art.CondensedRows, art.PlanUnassigned) + " of original"},
		}
		return cw.WriteAll(rows)
	})
}

func (w *Writer) writeCSV(name string, write func(*csv.Writer) error) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := write(cw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}

	w.logger.Info().Str("file", name).Msg("artifact written")
	return nil
}

// validDigitLength reports whether a digit string is one the ingest
// endpoint accepts: 3 (area or short code), 6 (area+exchange), 7
// (area+exchange+block), or 10 (full number).
func validDigitLength(digits string) bool {
	switch len(digits) {
	case 3, 6, 7, 10:
		return true
	}
	return false
}

func pct(part, whole int) string {
	if whole == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(whole)*100)
}
