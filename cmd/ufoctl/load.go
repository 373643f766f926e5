package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	logpkg "github.com/kailas-cloud/ufotracker/internal/logger"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 1 << 20

// lineRecord is one JSON Lines input record.
type lineRecord struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ObjectType  string    `json:"object_type"`
	Description string    `json:"description"`
	Reliability *int      `json:"reliability"`
}

func (l lineRecord) toRecord() domsighting.Record {
	return domsighting.Record{
		ID:          l.ID,
		OccurredAt:  l.OccurredAt,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		City:        l.City,
		State:       l.State,
		ObjectType:  l.ObjectType,
		Description: l.Description,
		Reliability: l.Reliability,
	}
}

// parsedLine is a record paired with its 1-based source line.
type parsedLine struct {
	line int
	rec  domsighting.Record
}

// readLines decodes JSON Lines input. Blank lines are skipped; the first malformed
// line aborts the read.
func readLines(r io.Reader) ([]parsedLine, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []parsedLine
	for n := 1; sc.Scan(); n++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l lineRecord
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, parsedLine{line: n, rec: l.toRecord()})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return out, nil
}

// importer is the part of the sighting service used by load.
type importer interface {
	Import(ctx context.Context, recs []domsighting.Record) []dombatch.Result
}

// loadChunks imports lines chunk records at a time and reports failures to errOut
// with their source line numbers.
func loadChunks(ctx context.Context, svc importer, lines []parsedLine, chunk int, errOut io.Writer) (ok, failed int) {
	chunk = max(1, chunk)
	for start := 0; start < len(lines); start += chunk {
		end := min(start+chunk, len(lines))

		recs := make([]domsighting.Record, end-start)
		for i := range recs {
			recs[i] = lines[start+i].rec
		}

		results := svc.Import(ctx, recs)
		for _, r := range results {
			if r.Err() == nil {
				continue
			}
			fmt.Fprintf(errOut, "line %d (%s): %v\n", lines[start+r.Line()-1].line, r.ID(), r.Err())
		}
		o, f := dombatch.Summary(results)
		ok += o
		failed += f

		logpkg.FromContext(ctx).Debug("Imported chunk",
			zap.Int("from", start), zap.Int("to", end), zap.Int("ok", o), zap.Int("failed", f))
	}
	return ok, failed
}

var loadCmd = &cobra.Command{
	Use:   "load <file.jsonl>",
	Short: "Bulk-load sightings from a JSON Lines file",
	Long: `load reads one sighting per line ("-" reads stdin), stores each record in
the catalog and indexes it. Records without an id get a generated one.
Per-line failures are printed to stderr; the command fails if any line failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
		}

		lines, err := readLines(in)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no records")
			return nil
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.docs.EnsureIndex(ctx); err != nil {
				return fmt.Errorf("create index: %w", err)
			}
			ok, failed := loadChunks(ctx, a.sightings, lines, a.cfg.Catalog.MaxImportSize, cmd.ErrOrStderr())
			fmt.Fprintf(cmd.OutOrStdout(), "%d loaded, %d failed\n", ok, failed)
			if failed > 0 {
				return fmt.Errorf("%d records failed", failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
