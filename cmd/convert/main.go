// Command convert packs the text and PDF files of a directory into .bin
// files and restores them, reporting the size saved.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"starterkit/archive"
	"starterkit/config"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/spf13/cobra"
)

var opts struct {
	binDir     string
	restoreDir string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "convert [dir]",
	Short: "Pack uploaded files into compressed .bin files and restore them",
	Long: `convert packs every .txt and .pdf file in a directory into a msgpack
envelope with a zstd-compressed payload, then restores each one to check
the round trip. Images are listed but left alone.

The directory defaults to the configured upload directory.

Examples:
  convert
  convert ./uploads --bins ./bins --restored ./restored`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.Flags().StringVar(&opts.binDir, "bins", "bins", "Directory for packed .bin files")
	rootCmd.Flags().StringVar(&opts.restoreDir, "restored", "restored", "Directory for restored files")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return serr.Wrap(err, "invalid configuration")
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger.SetLogLevel(level)

	dir := cfg.UploadDir
	if len(args) == 1 {
		dir = args[0]
	}

	report, err := archive.ConvertDir(dir, opts.binDir, opts.restoreDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range report.Converted {
		fmt.Fprintf(out, "%s: %s -> %s (%.1f%% smaller), restored to %s\n",
			filepath.Base(res.Source), archive.FormatSize(res.OriginalSize),
			archive.FormatSize(res.BinSize), res.Reduction()*100, res.Restored)
	}
	for _, img := range report.Skipped {
		fmt.Fprintf(out, "%s: skipped (image)\n", filepath.Base(img))
	}
	for src, msg := range report.Failed {
		fmt.Fprintf(out, "%s: failed: %s\n", filepath.Base(src), msg)
	}

	if len(report.Failed) > 0 {
		return serr.F("%d of %d files failed", len(report.Failed), len(report.Failed)+len(report.Converted))
	}
	return nil
}
