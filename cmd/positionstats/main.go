// Command positionstats summarises a positionimu record log and optionally
// renders it as a PNG plot and an HTML chart.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/positionimu/internal/recordlog"
	"github.com/banshee-data/positionimu/internal/units"
)

var (
	logPath  = flag.String("log", "positionIMU.csv", "Record log to read")
	pngPath  = flag.String("png", "", "Write a position and heading plot to this PNG file")
	htmlPath = flag.String("html", "", "Write an interactive position chart to this HTML file")
	timezone = flag.String("tz", "UTC", "Timezone used to print the run span")
)

func main() {
	flag.Parse()

	if !units.IsTimezoneValid(*timezone) {
		log.Fatalf("positionstats: invalid timezone %q", *timezone)
	}
	if err := run(*logPath, *pngPath, *htmlPath, *timezone, os.Stdout); err != nil {
		log.Fatalf("positionstats: %v", err)
	}
}

func run(logFile, pngFile, htmlFile, tz string, out io.Writer) error {
	f, err := os.Open(logFile)
	if err != nil {
		return err
	}
	defer f.Close()

	records, skipped, err := recordlog.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", logFile, err)
	}
	if skipped > 0 {
		log.Printf("skipped %d malformed lines in %s", skipped, logFile)
	}

	summary := recordlog.Summarize(records)
	if summary.Start, err = units.ConvertTime(summary.Start, tz); err != nil {
		return err
	}
	if summary.End, err = units.ConvertTime(summary.End, tz); err != nil {
		return err
	}
	if err := summary.WriteText(out); err != nil {
		return err
	}

	if pngFile != "" {
		if err := recordlog.WritePlot(records, pngFile); err != nil {
			return err
		}
		log.Printf("wrote %s", pngFile)
	}

	if htmlFile != "" {
		h, err := os.Create(htmlFile)
		if err != nil {
			return err
		}
		if err := recordlog.WriteChart(records, h); err != nil {
			h.Close()
			return err
		}
		if err := h.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s", htmlFile)
	}
	return nil
}
