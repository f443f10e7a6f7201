package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/docload"
)

type jsonReport struct {
	*docload.Report
	Duration   string   `json:"duration"`
	Throughput float64  `json:"docs_per_second"`
	OK         bool     `json:"ok"`
	Errors     []string `json:"errors,omitempty"`
}

func writeReport(w io.Writer, format string, r *docload.Report) error {
	if format == "json" {
		out := jsonReport{
			Report:     r,
			Duration:   r.Duration.String(),
			Throughput: r.Throughput(),
			OK:         r.OK(),
		}
		for _, re := range failedRounds(r) {
			out.Errors = append(out.Errors, re.Error())
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "mode:       %s\n", r.Mode)
	fmt.Fprintf(w, "rounds:     %d of %d completed\n", r.Completed, r.Rounds)
	fmt.Fprintf(w, "documents:  %s per round (%s)\n", humanize.Comma(int64(r.Items)), humanize.Bytes(uint64(r.Bytes)))
	fmt.Fprintf(w, "writes:     %s (%s failed)\n", humanize.Comma(int64(r.Writes)), humanize.Comma(int64(r.FailedWrites)))
	if r.Mode == docload.ModeBatched {
		fmt.Fprintf(w, "batches:    %s (%s failed)\n", humanize.Comma(int64(r.Splits)), humanize.Comma(int64(r.FailedSplits)))
	}
	fmt.Fprintf(w, "duration:   %s (%s docs/s)\n", r.Duration.Round(time.Millisecond), humanize.CommafWithDigits(r.Throughput(), 1))
	for _, re := range failedRounds(r) {
		fmt.Fprintf(w, "failed:     %s\n", re.Error())
	}
	if r.Completed < r.Rounds {
		_, err := fmt.Fprintln(w, "Interrupted.")
		return err
	}
	_, err := fmt.Fprintln(w, "Done.")
	return err
}

func failedRounds(r *docload.Report) []error {
	err := r.Err()
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.Errors
	}
	return []error{err}
}
