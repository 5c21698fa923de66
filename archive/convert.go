package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Result describes one packed and restored file
type Result struct {
	Source       string
	Bin          string
	Restored     string
	OriginalSize int64
	BinSize      int64
}

// Reduction is the fraction of the original size saved, 0 for empty files
func (r Result) Reduction() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.OriginalSize-r.BinSize) / float64(r.OriginalSize)
}

// Report is the outcome of ConvertDir
type Report struct {
	Converted []Result
	Skipped   []string          // images, which are listed but not packed
	Failed    map[string]string // source path -> error
}

// ConvertDir packs every text and PDF file in srcDir into binDir, then
// restores each into restoreDir. A failing file does not stop the others;
// its partial outputs are removed.
func ConvertDir(srcDir, binDir, restoreDir string) (Report, error) {
	report := Report{Failed: map[string]string{}}

	files, err := Split(srcDir)
	if err != nil {
		return report, serr.Wrap(err, "failed to split source files")
	}
	logger.Info("Files found", "dir", srcDir, "text", len(files.Text), "pdf", len(files.PDF), "image", len(files.Image))

	sources := append(append([]string{}, files.Text...), files.PDF...)
	for _, src := range sources {
		res, err := convertOne(src, binDir, restoreDir)
		if err != nil {
			logger.LogErr(err, "conversion failed", "path", src)
			report.Failed[src] = err.Error()
			continue
		}
		logger.Info("Converted", "path", src, "original", FormatSize(res.OriginalSize),
			"bin", FormatSize(res.BinSize), "reduction", fmt.Sprintf("%.1f%%", res.Reduction()*100))
		report.Converted = append(report.Converted, res)
	}

	for _, img := range files.Image {
		logger.Debug("Image not packed", "path", img)
		report.Skipped = append(report.Skipped, img)
	}
	return report, nil
}

func convertOne(src, binDir, restoreDir string) (Result, error) {
	res := Result{Source: src}

	info, err := os.Stat(src)
	if err != nil {
		return res, serr.Wrap(err, "failed to stat source")
	}
	res.OriginalSize = info.Size()

	res.Bin, err = Pack(src, binDir)
	if err != nil {
		return res, err
	}

	res.Restored, err = Unpack(res.Bin, restoreDir)
	if err != nil {
		os.Remove(res.Bin)
		return res, err
	}

	binInfo, err := os.Stat(res.Bin)
	if err != nil {
		os.Remove(res.Bin)
		os.Remove(res.Restored)
		return res, serr.Wrap(err, "failed to stat bin")
	}
	res.BinSize = binInfo.Size()
	return res, nil
}

// FormatSize renders n bytes with a binary unit, e.g. "1.50 KB"
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}

// BinPath returns where Pack writes src inside binDir
func BinPath(src, binDir string) string {
	return filepath.Join(binDir, baseName(src)+BinExt)
}
