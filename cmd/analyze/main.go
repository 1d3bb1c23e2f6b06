// Command analyze scores one exported workbook offline and writes the
// report next to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/engine"
	"github.com/Helper-Yoon/chat-analyzer/internal/loader"
	"github.com/Helper-Yoon/chat-analyzer/internal/period"
	"github.com/Helper-Yoon/chat-analyzer/internal/report"
	"github.com/Helper-Yoon/chat-analyzer/internal/runs"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	in      string
	out     string
	start   string
	end     string
	profile string
	format  string
	tz      string
	verbose bool

	// nil unless the flag was passed
	managers []string
	exclude  []string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	result, err := run(context.Background(), opts, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
	if !result.HasResults() {
		log.Warn().Msg(report.NoResultsNotice)
	}
	log.Info().Str("out", opts.out).Str("run_id", result.RunID).Msg("report written")
}

func parseFlags(args []string) (options, error) {
	var o options
	var managers, exclude string
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&o.in, "in", "", "input workbook (.xlsx) or table document (.json)")
	fs.StringVar(&o.out, "out", "", "output path (default: <in>_analysis.<format>)")
	fs.StringVar(&o.start, "start", "", "first day of the analysis period (YYYY-MM-DD)")
	fs.StringVar(&o.end, "end", "", "last day of the analysis period (YYYY-MM-DD)")
	fs.StringVar(&managers, "managers", "", "comma-separated manager names (overrides profile)")
	fs.StringVar(&exclude, "exclude", "", "comma-separated excluded names (overrides profile)")
	fs.StringVar(&o.profile, "profile", "", "scoring profile YAML")
	fs.StringVar(&o.format, "format", "xlsx", "report format: xlsx or json")
	fs.StringVar(&o.tz, "tz", "Asia/Seoul", "time zone of naive timestamps")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.in == "" || o.start == "" || o.end == "" {
		return o, fmt.Errorf("-in, -start and -end are required")
	}
	o.format = strings.ToLower(o.format)
	if o.format != "xlsx" && o.format != "json" {
		return o, fmt.Errorf("unknown format %q", o.format)
	}
	if o.out == "" {
		o.out = strings.TrimSuffix(o.in, filepath.Ext(o.in)) + "_analysis." + o.format
	}

	// Only flags the user actually passed override the profile lists
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "managers":
			o.managers = splitNames(managers)
		case "exclude":
			o.exclude = splitNames(exclude)
		}
	})
	return o, nil
}

func splitNames(raw string) []string {
	if names := config.SplitNames(raw); names != nil {
		return names
	}
	return []string{}
}

func run(ctx context.Context, o options, logger zerolog.Logger) (*types.Result, error) {
	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone: %w", err)
	}
	window, err := period.ParseWindow(o.start, o.end, loc)
	if err != nil {
		return nil, err
	}

	profile := config.DefaultProfile()
	if o.profile != "" {
		if profile, err = config.LoadProfile(o.profile); err != nil {
			return nil, err
		}
	}
	params, err := runs.Params(profile, window, o.managers, o.exclude)
	if err != nil {
		return nil, err
	}

	src, err := loader.FileSource(o.in)
	if err != nil {
		return nil, err
	}

	eng := engine.New(logger, engine.WithObserver(engine.NewLogObserver(logger)))
	result, err := eng.Run(ctx, src, params)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(o.out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if o.format == "json" {
		err = report.WriteJSON(f, result)
	} else {
		err = report.WriteWorkbook(f, result)
	}
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return result, f.Close()
}
