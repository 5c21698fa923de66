// Package archive packs stored files into compact .bin files and restores them.
//
// A .bin file is a msgpack-encoded Bin whose payload is zstd-compressed.
// Text and PDF files round-trip byte for byte. Images are listed by Split
// but not packed.
package archive

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"
)

// Kind says how a file was packed and which extension it restores to
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// BinExt is the extension of packed files
const BinExt = ".bin"

// RestoredSuffix is appended to the base name of a restored file
const RestoredSuffix = "_restored"

var (
	// ErrUnsupported is returned for kinds that cannot be packed
	ErrUnsupported = errors.New("file kind cannot be packed")
	// ErrCorrupt is returned when a .bin file does not decode to what was packed
	ErrCorrupt = errors.New("packed data is corrupt")
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tiff": true, ".webp": true,
}

var restoreExts = map[Kind]string{
	KindText: ".txt",
	KindPDF:  ".pdf",
}

// Both are safe for concurrent EncodeAll/DecodeAll.
// Zero frames keep empty files decodable.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression), zstd.WithZeroFrames(true))
	decoder, _ = zstd.NewReader(nil)
)

// Bin is the packed form of one file
type Bin struct {
	Kind         Kind   `msgpack:"kind"`
	Name         string `msgpack:"name"`
	OriginalSize int64  `msgpack:"original_size"`
	Checksum     uint64 `msgpack:"xxh3"`
	Compressed   []byte `msgpack:"zstd_compressed"`
}

// KindOf classifies path by its extension
func KindOf(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".txt":
		return KindText, true
	case ext == ".pdf":
		return KindPDF, true
	case imageExts[ext]:
		return KindImage, true
	}
	return "", false
}

// Files groups the regular files of a directory by kind
type Files struct {
	Text  []string
	PDF   []string
	Image []string
}

// Len is the number of classified files
func (f Files) Len() int {
	return len(f.Text) + len(f.PDF) + len(f.Image)
}

// Split lists dir and groups its files by kind. Unknown extensions are skipped.
func Split(dir string) (Files, error) {
	var files Files

	info, err := os.Stat(dir)
	if err != nil {
		return files, serr.Wrap(err, "failed to stat directory", "dir", dir)
	}
	if !info.IsDir() {
		return files, serr.New("not a directory", "dir", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return files, serr.Wrap(err, "failed to read directory", "dir", dir)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		kind, ok := KindOf(path)
		if !ok {
			continue
		}
		switch kind {
		case KindText:
			files.Text = append(files.Text, path)
		case KindPDF:
			files.PDF = append(files.PDF, path)
		case KindImage:
			files.Image = append(files.Image, path)
		}
	}

	sort.Strings(files.Text)
	sort.Strings(files.PDF)
	sort.Strings(files.Image)
	return files, nil
}

// Encode packs data of the given kind into .bin bytes.
// Text must be valid UTF-8.
func Encode(kind Kind, name string, data []byte) ([]byte, error) {
	if _, ok := restoreExts[kind]; !ok {
		return nil, serr.Wrap(ErrUnsupported, "kind", string(kind))
	}
	if kind == KindText && !utf8.Valid(data) {
		return nil, serr.New("text is not valid UTF-8", "name", name)
	}

	bin := Bin{
		Kind:         kind,
		Name:         name,
		OriginalSize: int64(len(data)),
		Checksum:     xxh3.Hash(data),
		Compressed:   encoder.EncodeAll(data, nil),
	}

	packed, err := msgpack.Marshal(&bin)
	if err != nil {
		return nil, serr.Wrap(err, "failed to msgpack encode bin")
	}
	return packed, nil
}

// Decode unpacks .bin bytes, verifying size and checksum
func Decode(packed []byte) (*Bin, []byte, error) {
	var bin Bin
	if err := msgpack.Unmarshal(packed, &bin); err != nil {
		return nil, nil, serr.Wrap(ErrCorrupt, "msgpack", err.Error())
	}
	if len(bin.Compressed) == 0 {
		return nil, nil, serr.Wrap(ErrCorrupt, "reason", "no compressed payload")
	}
	if _, ok := restoreExts[bin.Kind]; !ok {
		return nil, nil, serr.Wrap(ErrUnsupported, "kind", string(bin.Kind))
	}

	data, err := decoder.DecodeAll(bin.Compressed, nil)
	if err != nil {
		return nil, nil, serr.Wrap(ErrCorrupt, "zstd", err.Error())
	}
	if int64(len(data)) != bin.OriginalSize || xxh3.Hash(data) != bin.Checksum {
		return nil, nil, serr.Wrap(ErrCorrupt, "reason", "size or checksum mismatch", "name", bin.Name)
	}
	return &bin, data, nil
}

// Pack writes src to binDir/<base>.bin and returns the .bin path
func Pack(src, binDir string) (string, error) {
	kind, ok := KindOf(src)
	if !ok {
		return "", serr.Wrap(ErrUnsupported, "path", src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", serr.Wrap(err, "failed to read file", "path", src)
	}

	packed, err := Encode(kind, filepath.Base(src), data)
	if err != nil {
		return "", serr.Wrap(err, "path", src)
	}

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", serr.Wrap(err, "failed to create bin directory", "dir", binDir)
	}
	binPath := BinPath(src, binDir)
	if err := os.WriteFile(binPath, packed, 0o644); err != nil {
		return "", serr.Wrap(err, "failed to write bin", "path", binPath)
	}
	return binPath, nil
}

// Unpack restores binPath to restoreDir/<base>_restored.<ext> and returns that path
func Unpack(binPath, restoreDir string) (string, error) {
	packed, err := os.ReadFile(binPath)
	if err != nil {
		return "", serr.Wrap(err, "failed to read bin", "path", binPath)
	}

	bin, data, err := Decode(packed)
	if err != nil {
		return "", serr.Wrap(err, "path", binPath)
	}

	if err := os.MkdirAll(restoreDir, 0o755); err != nil {
		return "", serr.Wrap(err, "failed to create restore directory", "dir", restoreDir)
	}
	out := filepath.Join(restoreDir, baseName(binPath)+RestoredSuffix+restoreExts[bin.Kind])
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", serr.Wrap(err, "failed to write restored file", "path", out)
	}
	return out, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
