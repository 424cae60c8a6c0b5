// Command binarize converts grayscale document scans to black and white.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	binarization "document-binarization"
	"document-binarization/internal/algorithms"
	"document-binarization/internal/config"
	"document-binarization/internal/core"
	"document-binarization/internal/io"
	"document-binarization/internal/morphology"
)

const usage = `Usage: binarize [-algorithm name] [-config file] [-param k=v]... [-gt truth.png] in.png out.png
       binarize -list

Binarizes a grayscale document image. Parameters given with -param override
those read from -config. When -gt is given, quality metrics comparing the
result with the ground truth are printed as JSON.
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}

	var (
		params core.Parameters
		steps  []morphology.Step
	)
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	algorithm := flag.String("algorithm", "", "Algorithm name (default sauvola, or the one named in -config)")
	configPath := flag.String("config", "", "TOML or YAML parameter file")
	groundTruth := flag.String("gt", "", "Ground truth image to evaluate the result against")
	list := flag.Bool("list", false, "List algorithms and their parameters as JSON and exit")
	workers := flag.Int("workers", 0, "Row bands processed concurrently (default from -config, else 1)")
	flag.Func("param", "Algorithm parameter as name=value, repeatable", parameterFlag(&params))
	flag.Func("morph", "Post-processing step as op[:shape[:size[:iterations]]], repeatable", morphologyFlag(&steps))
	flag.Parse()

	logger := initLogger(*debugMode)

	if *list {
		if err := printJSON(binarization.Algorithms()); err != nil {
			logger.WithError(err).Fatal("Failed to list algorithms")
		}
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	in, out := flag.Arg(0), flag.Arg(1)

	job, err := resolveJob(*configPath, *algorithm, *workers, params, steps)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.WithFields(logrus.Fields{
		"algorithm":  job.algorithm.String(),
		"parameters": job.params.String(),
		"workers":    job.options.Workers,
	}).Debug("Resolved configuration")

	loader := io.NewLoader(logger)
	img, err := loader.LoadGrayscale(in)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load input")
	}

	result, err := binarization.New(logger, job.options).BinarizeImage(img, job.algorithm, job.params)
	if err != nil {
		logger.WithError(err).Fatal("Binarization failed")
	}
	if err := loader.Save(out, result); err != nil {
		logger.WithError(err).Fatal("Failed to save result")
	}

	if *groundTruth == "" {
		return
	}
	truth, err := loader.LoadGrayscale(*groundTruth)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load ground truth")
	}
	report, err := binarization.Evaluate(truth, result)
	if err != nil {
		logger.WithError(err).Fatal("Evaluation failed")
	}
	if err := printJSON(report); err != nil {
		logger.WithError(err).Fatal("Failed to print report")
	}
}

type job struct {
	algorithm algorithms.ID
	params    core.Parameters
	options   binarization.Options
}

// resolveJob merges the parameter file with command line overrides.
func resolveJob(configPath, algorithm string, workers int, params core.Parameters, steps []morphology.Step) (job, error) {
	j := job{options: binarization.Options{Workers: 1}}
	name := "sauvola"

	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			return job{}, err
		}
		if f.Algorithm != "" {
			name = f.Algorithm
		}
		if f.Workers > 0 {
			j.options.Workers = f.Workers
		}
		j.params = f.Parameters
		j.options.Morphology = f.Morphology
	}

	if algorithm != "" {
		name = algorithm
	}
	if workers > 0 {
		j.options.Workers = workers
	}
	for _, key := range params.Keys() {
		v, _ := params.Get(key)
		j.params.Set(key, v)
	}
	j.options.Morphology = append(j.options.Morphology, steps...)

	id, err := algorithms.Parse(name)
	if err != nil {
		return job{}, err
	}
	j.algorithm = id
	return j, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
