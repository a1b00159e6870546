// Command inspect runs one capture, measure and identify pass from the
// terminal and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go-tree-inspector/internal/config"
	"go-tree-inspector/internal/container"
	"go-tree-inspector/internal/factory"
	"go-tree-inspector/internal/logger"
	"go-tree-inspector/internal/service"
	"go-tree-inspector/pkg/models"
)

type options struct {
	source       string
	ref          string
	distance     float64
	angle        float64
	skipIdentify bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.UseText()
	logger.SetLevel(cfg.LogLevel)

	c, err := container.NewContainer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(context.Background(), c.Service(), c.Sources(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.StringVar(&opts.source, "source", "file", "photo source: camera, file, url or azure")
	fs.StringVar(&opts.ref, "ref", "", "path, URL or container/blob of the photo")
	fs.Float64Var(&opts.distance, "distance", 0, "distance to the tree")
	fs.Float64Var(&opts.angle, "angle", 0, "angle in degrees (slope for the legacy formula)")
	fs.BoolVar(&opts.skipIdentify, "no-identify", false, "stop after the acceptance check and height estimate")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch factory.SourceType(strings.ToLower(opts.source)) {
	case factory.CameraSource:
	case factory.FileSource, factory.URLSource, factory.AzureSource:
		if opts.ref == "" {
			return opts, fmt.Errorf("-ref is required for source %q", opts.source)
		}
	default:
		return opts, fmt.Errorf("unknown source %q", opts.source)
	}
	return opts, nil
}

func run(ctx context.Context, svc service.TreeInspectionService, sources factory.SourceFactory, opts options, out io.Writer) error {
	src, err := sources.CreateSource(factory.SourceRequest{
		Type: factory.SourceType(strings.ToLower(opts.source)),
		Ref:  opts.ref,
	})
	if err != nil {
		return err
	}

	req := service.InspectRequest{Source: src, SkipIdentify: opts.skipIdentify}
	if opts.distance != 0 || opts.angle != 0 {
		req.Measurement = &models.HeightMeasurementInput{Distance: opts.distance, AngleOrSlope: opts.angle}
	}

	resp, err := svc.Inspect(ctx, req)
	if err != nil {
		return err
	}
	printReport(out, resp)
	return nil
}

func printReport(w io.Writer, resp *models.InspectionResponse) {
	fmt.Fprintln(w, resp.Gate.Report)
	if !resp.Gate.Accepted {
		fmt.Fprintf(w, "Rejected: %s\n", resp.Gate.Reason)
		return
	}
	fmt.Fprintln(w, "Image accepted")

	if resp.Sharpness != nil && resp.Sharpness.Blurry {
		fmt.Fprintf(w, "Warning: %s\n", resp.Sharpness.Message)
	}
	if resp.Height != nil {
		fmt.Fprintf(w, "Estimated tree height: %.2f units (%s formula)\n", resp.Height.HeightUnits, resp.Height.Formula)
	}

	result := resp.Result
	if result == nil {
		return
	}
	if !result.Identified() {
		fmt.Fprintln(w, result.FailureReason)
		return
	}
	fmt.Fprintf(w, "Tree: %s\n", result.Identification.Name)
	if result.Identification.ReferenceURL != "" {
		fmt.Fprintf(w, "Reference: %s\n", result.Identification.ReferenceURL)
	}
	if result.Plaque != nil && !result.Plaque.Skipped {
		verdict := "does not match"
		if result.Plaque.Corroborates {
			verdict = "matches"
		}
		fmt.Fprintf(w, "Plaque text %q %s the identification\n", result.Plaque.Text, verdict)
	}
	if result.Excerpt != nil && result.Excerpt.Text != "" {
		fmt.Fprintf(w, "\n%s", result.Excerpt.Text)
		if result.Excerpt.Truncated {
			fmt.Fprint(w, "...")
		}
		fmt.Fprintln(w)
	}
}
