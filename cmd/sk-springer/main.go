// sk-springer converts Springer publisher XML into HEP literature records,
// one JSON document per line.
//
// $ sk-springer ftp_PUB_19-01-01_00-00-01.zip > out.jsonl
// $ zstdcat dump.xml.zst | sk-springer > out.jsonl
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/miku/hepkit"
	"github.com/miku/hepkit/config"
	"github.com/miku/hepkit/convert"
	"github.com/miku/hepkit/feeds"
	"github.com/miku/hepkit/pproc/record"
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

var (
	rulesFile   = flag.String("rules", "", fmt.Sprintf("YAML file with classification rules (default: %s, if it exists)", config.DefaultRulesFile))
	numWorkers  = flag.Int("w", runtime.NumCPU(), "number of workers")
	cacheDir    = flag.String("cache", "", "directory for fetched and unpacked packages (default: XDG cache)")
	maxRetries  = flag.Int("r", 3, "max retries for fetching packages")
	timeout     = flag.Duration("T", 5*time.Minute, "timeout for fetching packages")
	verbose     = flag.Bool("verbose", false, "log progress")
	debug       = flag.Bool("debug", false, "log diagnostics, like unresolved affiliations")
	logJSON     = flag.Bool("log-json", false, "log as JSON")
	cpuprofile  = flag.String("cpuprofile", "", "file to write cpu pprof to")
	showVersion = flag.Bool("version", false, "show version")
)

var help = `sk-springer converts Springer publisher XML to HEP records

Arguments can be XML files, zstd or gzip compressed XML files, zip packages
or URLs of zip packages. Without arguments, a stream of concatenated XML
documents is read from stdin.

Examples:

    $ sk-springer ftp_PUB_19-01-01_00-00-01.zip
    $ sk-springer https://example.com/packages/ftp_PUB_19-01-01_00-00-01.zip
    $ zstdcat dump.xml.zst | sk-springer -w 16

Usage:

`

// converter wraps a record converter with the envelope fields shared by all
// records of a run.
type converter struct {
	conv   *convert.SpringerConverter
	source hep.AcquisitionSource
	logger log.FieldLogger
}

// convert turns a single publisher document into a JSON line. Documents
// that cannot be converted yield a record.ErrSkip.
func (c *converter) convert(p []byte, fileURL string) ([]byte, error) {
	rec, err := c.conv.ConvertBytes(p)
	if err != nil {
		var skip convert.Skip
		if errors.As(err, &skip) {
			c.logger.WithField("file", fileURL).Warnf("skipping document: %v", err)
			return nil, fmt.Errorf("%w: %v", record.ErrSkip, err)
		}
		return nil, err
	}
	env := hep.Envelope{
		ID:                convert.RecordID(rec, string(p)),
		FileURL:           fileURL,
		AcquisitionSource: c.source,
		Record:            rec,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// convertFile converts every publisher document in a file. It stops early,
// if the context is cancelled.
func (c *converter) convertFile(ctx context.Context, filename string, skipped *atomic.Int64) ([]byte, error) {
	rc, err := feeds.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<26)
	scanner.Split(record.TagSplitter(springer.RootTag))
	var result []byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := c.convert(scanner.Bytes(), filename)
		switch {
		case errors.Is(err, record.ErrSkip):
			skipped.Add(1)
			continue
		case err != nil:
			return nil, err
		}
		result = append(result, b...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return result, nil
}

func setupLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if *verbose {
		logger.SetLevel(log.InfoLevel)
	}
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}
	if *logJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	return logger
}

func main() {
	flag.Usage = func() {
		io.WriteString(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(hepkit.Version)
		os.Exit(0)
	}
	cfg := config.Config{
		CacheDir:   *cacheDir,
		RulesFile:  *rulesFile,
		Workers:    *numWorkers,
		MaxRetries: *maxRetries,
		Timeout:    *timeout,
		Verbose:    *verbose,
		Debug:      *debug,
		LogJSON:    *logJSON,
	}
	logger := setupLogger()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}
	rules, err := config.LoadRulesOrDefault(cfg.RulesFile)
	if err != nil {
		logger.Fatal(err)
	}
	c := &converter{
		conv:   convert.NewSpringerConverter(rules, logger),
		source: hep.NewAcquisitionSource(time.Now()),
		logger: logger,
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	started := time.Now()
	if flag.NArg() == 0 {
		proc := record.NewProcessor(func(p []byte) ([]byte, error) {
			return c.convert(p, "")
		}, record.WithTag(springer.RootTag), record.WithWorkers(cfg.Workers))
		if err := proc.Process(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Fatal(err)
		}
		stats := proc.Stats()
		logger.WithFields(log.Fields{
			"documents": stats.Records,
			"skipped":   stats.Skipped,
			"written":   stats.Written,
			"elapsed":   time.Since(started).String(),
		}).Info("done")
		return
	}
	fetcher, err := feeds.NewSpringerFetcher(cfg.CacheDir, cfg.MaxRetries, cfg.Timeout)
	if err != nil {
		logger.Fatal(err)
	}
	fetcher.Logger = logger
	var files []string
	for _, location := range flag.Args() {
		fs, err := fetcher.Resolve(ctx, location)
		if err != nil {
			logger.Fatalf("%s: %v", location, err)
		}
		files = append(files, fs...)
	}
	logger.WithField("files", len(files)).Info("converting")
	var skipped atomic.Int64
	proc := record.NewProcessor(func(p []byte) ([]byte, error) {
		return c.convertFile(ctx, string(p), &skipped)
	}, record.WithWorkers(cfg.Workers))
	names := strings.NewReader(strings.Join(files, "\n"))
	if err := proc.Process(ctx, names, os.Stdout); err != nil {
		logger.Fatal(err)
	}
	logger.WithFields(log.Fields{
		"files":   len(files),
		"skipped": skipped.Load(),
		"elapsed": time.Since(started).String(),
	}).Info("done")
}
