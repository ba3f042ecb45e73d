package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nocturnecity/density-resizer/internal"
	"github.com/nocturnecity/density-resizer/pkg"
)

const generateCmd = "generate"
const sizesCmd = "sizes"
const defaultLogLvl = "info"
const defaultWorkers = 1

type options struct {
	logLVL      string
	configPath  string
	outputDir   string
	filter      string
	workers     int
	metricsFile string
	production  bool
	bucket      string
	region      string
	prefix      string
}

func main() {
	if len(os.Args[1:]) < 1 {
		fmt.Printf("densities: one of the following command expected: '%v'\n", []string{generateCmd, sizesCmd})
		os.Exit(1)
	}
	cmdName := os.Args[1]
	args := os.Args[2:]

	var opt options
	cmd := flag.NewFlagSet(cmdName, flag.ExitOnError)
	cmd.Usage = func() {
		fmt.Fprintf(cmd.Output(), "usage: densities %s [flags] [source]\n", cmdName)
		cmd.PrintDefaults()
	}
	cmd.StringVar(&opt.logLVL, "loglvl", defaultLogLvl, "set logging level: 'debug', 'info', 'error'")
	cmd.StringVar(&opt.configPath, "config", "", "path to a YAML file with source, output_dir, filter, workers, sizes and publish settings")
	cmd.StringVar(&opt.outputDir, "out", "", "directory to write resized images to (default: working directory)")
	cmd.StringVar(&opt.filter, "filter", internal.DefaultFilter, fmt.Sprintf("resample filter: %v", internal.FilterNames()))
	cmd.IntVar(&opt.workers, "workers", defaultWorkers, "number of sizes resized in parallel")
	cmd.StringVar(&opt.metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")
	cmd.BoolVar(&opt.production, "json", false, "log in JSON")
	cmd.StringVar(&opt.bucket, "s3-bucket", "", "upload every output to this S3 bucket")
	cmd.StringVar(&opt.region, "s3-region", "", "AWS region of the S3 bucket (default: shared AWS config)")
	cmd.StringVar(&opt.prefix, "s3-prefix", "", "key prefix for uploaded outputs")

	if err := cmd.Parse(args); err != nil {
		fmt.Printf("densities: error parsing arguments: '%v'\n", err)
		os.Exit(1)
	}

	lvl, lvlErr := internal.ParseLevel(opt.logLVL)
	if lvlErr != nil {
		fmt.Printf("densities: error parsing log level: '%v'\n", lvlErr)
		os.Exit(1)
	}
	logOpts := []internal.Option{internal.WithLevel(lvl)}
	if opt.production {
		logOpts = append(logOpts, internal.WithProduction())
	}
	stdLog := internal.NewStdLog(logOpts...)
	defer stdLog.Sync()

	req, err := buildRequest(cmd, opt)
	if err != nil {
		stdLog.Fatal("%v", err)
	}

	switch cmdName {
	case generateCmd:
		if err := generate(stdLog, req, opt.metricsFile); err != nil {
			stdLog.Sync()
			os.Exit(1)
		}
	case sizesCmd:
		printSizes(os.Stdout, req.Sizes)
	default:
		stdLog.Fatal("Unknown sub-command: %s\n", cmdName)
	}
}

// buildRequest merges the optional config file with explicitly set flags;
// flags win. The single positional argument overrides the source.
func buildRequest(cmd *flag.FlagSet, opt options) (pkg.Request, error) {
	cfg := &internal.Config{}
	if opt.configPath != "" {
		loaded, err := internal.LoadConfig(opt.configPath)
		if err != nil {
			return pkg.Request{}, err
		}
		cfg = loaded
	}

	cmd.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutputDir = opt.outputDir
		case "filter":
			cfg.Filter = opt.filter
		case "workers":
			cfg.Workers = opt.workers
		}
	})
	if opt.bucket != "" {
		cfg.Publish = &pkg.PublishOptions{
			BucketName: opt.bucket,
			Region:     opt.region,
			Prefix:     opt.prefix,
		}
	}

	if cmd.NArg() > 1 {
		return pkg.Request{}, fmt.Errorf("at most one source path expected, got %d", cmd.NArg())
	}
	if cmd.NArg() == 1 {
		cfg.Source = cmd.Arg(0)
	}
	return cfg.Request(), nil
}

func generate(stdLog *internal.StdLog, req pkg.Request, metricsFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := internal.NewMetrics()
	handler := internal.NewResizeHandler(req, stdLog, internal.WithMetrics(metrics))
	res, err := handler.ProcessRequest(ctx)
	if metricsFile != "" {
		if mErr := metrics.WriteTextfile(metricsFile); mErr != nil {
			stdLog.Error("%v", mErr)
		}
	}
	if err != nil {
		stdLog.Error("%s: %v", internal.ErrorKind(err), err)
		return err
	}
	stdLog.Info("All %d resized images have been saved successfully.", len(res.Sizes))
	return nil
}

func printSizes(w io.Writer, sizes pkg.SizeTable) {
	for _, d := range sizes {
		fmt.Fprintf(w, "%-8s %4dx%-4d %s\n", d.Label, d.Width, d.Height, d.FileName())
	}
}
