package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"starterkit/config"
	"starterkit/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
)

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// MsgPackContentType is accepted on list requests to get a msgpack body
const MsgPackContentType = "application/msgpack"

// Uploads serves the file upload endpoints
type Uploads struct {
	Dir       string
	PublicURL string
	// MaxBytes caps the size of a stored file. rweb has already buffered and
	// parsed the request body by the time Create runs, so it does not bound
	// what the server reads.
	MaxBytes int64
}

// NewUploads builds the upload handlers from config
func NewUploads(cfg *config.Config) *Uploads {
	return &Uploads{
		Dir:       cfg.UploadDir,
		PublicURL: strings.TrimRight(cfg.PublicURL, "/"),
		MaxBytes:  cfg.MaxUploadBytes,
	}
}

// FileListOutput is the body of GET /uploads
type FileListOutput struct {
	UploadedFiles []string `json:"uploaded_files" msgpack:"uploaded_files"`
}

// FileURLOutput is the body of GET /file/:id
type FileURLOutput struct {
	FileURL string `json:"file_url"`
}

// Create handles POST /upload
// Stores the multipart "file" field in the upload directory and records it.
func (u *Uploads) Create(ctx rweb.Context) error {
	f, fh, err := ctx.Request().GetFormFile(uploadField)
	if err != nil {
		logger.Debug("No upload in request", "error", err.Error())
		return writeError(ctx, http.StatusBadRequest, "No file provided")
	}
	defer f.Close()

	if u.MaxBytes > 0 && fh.Size > u.MaxBytes {
		return writeError(ctx, http.StatusRequestEntityTooLarge, "file too large")
	}

	data, err := io.ReadAll(f)
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to read uploaded file"), "upload error")
		return writeError(ctx, http.StatusBadRequest, "No file provided")
	}

	name, ok := cleanFilename(fh.Filename)
	if !ok {
		return writeError(ctx, http.StatusBadRequest, "invalid filename")
	}

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		logger.LogErr(serr.Wrap(err, "failed to create upload directory"), "storage error")
		return writeError(ctx, http.StatusInternalServerError, "failed to store file")
	}

	path := filepath.Join(u.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.LogErr(serr.Wrap(err, "failed to write upload"), "storage error", "path", path)
		return writeError(ctx, http.StatusInternalServerError, "failed to store file")
	}

	rec, err := models.CreateUpload(name, path)
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to record upload"), "database error")
		return writeError(ctx, http.StatusInternalServerError, "failed to record file")
	}

	logger.Info("File uploaded", "id", rec.ID, "filename", name, "bytes", len(data))
	return writeSuccess(ctx, http.StatusCreated, rec.ToOutput())
}

// FileURL handles GET /file/:id
// Resolves a stored upload to its public URL.
func (u *Uploads) FileURL(ctx rweb.Context) error {
	id, err := strconv.ParseInt(ctx.Request().Param("id"), 10, 64)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid file id")
	}

	rec, err := models.GetUploadByID(id)
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to get upload"), "database error")
		return writeError(ctx, http.StatusInternalServerError, "database error")
	}
	if rec == nil {
		return writeError(ctx, http.StatusNotFound, "File not found")
	}
	if !rec.FilePath.Valid || rec.FilePath.String == "" {
		return writeError(ctx, http.StatusBadRequest, "No file path stored for this upload")
	}

	return writeSuccess(ctx, http.StatusOK, FileURLOutput{FileURL: u.fileURL(filepath.Base(rec.FilePath.String))})
}

// Serve handles GET /uploads/:filename
func (u *Uploads) Serve(ctx rweb.Context) error {
	name, ok := cleanFilename(ctx.Request().Param("filename"))
	if !ok || name != ctx.Request().Param("filename") {
		ctx.SetStatus(http.StatusNotFound)
		return nil
	}

	data, err := os.ReadFile(filepath.Join(u.Dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.LogErr(serr.Wrap(err, "failed to read upload"), "storage error", "filename", name)
		}
		ctx.SetStatus(http.StatusNotFound)
		return nil
	}

	if ct := ContentType(name); ct != "" {
		ctx.Response().SetHeader("Content-Type", ct)
	} else {
		ctx.Response().SetHeader("Content-Type", "application/octet-stream")
	}
	return ctx.Bytes(data)
}

// List handles GET /uploads
// Returns the public URL of every file in the upload directory.
func (u *Uploads) List(ctx rweb.Context) error {
	urls, err := u.listURLs()
	if err != nil {
		logger.LogErr(err, "failed to list uploads")
		return writeError(ctx, http.StatusInternalServerError, "failed to list files")
	}

	out := FileListOutput{UploadedFiles: urls}

	if wantsMsgPack(ctx) {
		packed, err := msgpack.Marshal(out)
		if err != nil {
			logger.LogErr(serr.Wrap(err, "failed to msgpack encode file list"), "encoding error")
			return writeError(ctx, http.StatusInternalServerError, "encoding error")
		}
		ctx.Response().SetHeader("Content-Type", MsgPackContentType)
		return ctx.Bytes(packed)
	}

	return writeSuccess(ctx, http.StatusOK, out)
}

func (u *Uploads) listURLs() ([]string, error) {
	entries, err := os.ReadDir(u.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, serr.Wrap(err, "failed to read upload directory")
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		urls = append(urls, u.fileURL(e.Name()))
	}
	sort.Strings(urls)
	return urls, nil
}

func (u *Uploads) fileURL(name string) string {
	return u.PublicURL + "/uploads/" + name
}

func wantsMsgPack(ctx rweb.Context) bool {
	if ctx.Request().QueryParam("format") == "msgpack" {
		return true
	}
	return strings.Contains(ctx.Request().Header("Accept"), MsgPackContentType)
}

// cleanFilename reduces name to a bare file name safe to join to the upload dir
func cleanFilename(name string) (string, bool) {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", false
	}
	return name, true
}

// Records handles GET /api/v1/uploads
// Returns the stored upload rows, newest first.
func (u *Uploads) Records(ctx rweb.Context) error {
	recs, err := models.ListUploads()
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to list upload records"), "database error")
		return writeError(ctx, http.StatusInternalServerError, "database error")
	}

	out := make([]models.UploadOutput, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].ToOutput())
	}
	return writeSuccess(ctx, http.StatusOK, out)
}
