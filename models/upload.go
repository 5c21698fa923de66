package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/serr"
)

// Upload records where an uploaded file was stored
type Upload struct {
	ID        int64          `json:"id"`
	GUID      string         `json:"guid"`
	Filename  string         `json:"filename"`
	FilePath  sql.NullString `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// UploadOutput is the JSON shape of an upload
type UploadOutput struct {
	ID        int64  `json:"id"`
	GUID      string `json:"guid"`
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
	CreatedAt string `json:"created_at"`
}

// ToOutput converts an Upload for API responses
func (u *Upload) ToOutput() UploadOutput {
	return UploadOutput{
		ID:        u.ID,
		GUID:      u.GUID,
		Filename:  u.Filename,
		FilePath:  u.FilePath.String,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

const uploadColumns = "id, guid, filename, file_path, created_at"

// CreateUpload records a stored file and returns the new row
func CreateUpload(filename, filePath string) (*Upload, error) {
	if filename == "" {
		return nil, serr.New("filename is required")
	}

	guid := uuid.New().String()
	err := WriteThrough(
		"INSERT INTO uploads (guid, filename, file_path) VALUES (?, ?, ?)",
		guid, filename, sql.NullString{String: filePath, Valid: filePath != ""},
	)
	if err != nil {
		return nil, serr.Wrap(err, "failed to insert upload")
	}

	u, err := getUpload("SELECT "+uploadColumns+" FROM uploads WHERE guid = ?", guid)
	if err != nil {
		return nil, serr.Wrap(err, "failed to read back upload")
	}
	if u == nil {
		return nil, serr.New("upload missing after insert")
	}
	return u, nil
}

// GetUploadByID returns the upload with id, or nil when there is none
func GetUploadByID(id int64) (*Upload, error) {
	u, err := getUpload("SELECT "+uploadColumns+" FROM uploads WHERE id = ?", id)
	if err != nil {
		return nil, serr.Wrap(err, "failed to get upload by id")
	}
	return u, nil
}

// ListUploads returns every recorded upload, newest first
func ListUploads() ([]Upload, error) {
	rows, err := ReadRows("SELECT " + uploadColumns + " FROM uploads ORDER BY id DESC")
	if err != nil {
		return nil, serr.Wrap(err, "failed to list uploads")
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.GUID, &u.Filename, &u.FilePath, &u.CreatedAt); err != nil {
			return nil, serr.Wrap(err, "failed to scan upload")
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.Wrap(err, "failed iterating uploads")
	}
	return uploads, nil
}

func getUpload(query string, arg interface{}) (*Upload, error) {
	rows, err := ReadRows(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var u Upload
	if err := rows.Scan(&u.ID, &u.GUID, &u.Filename, &u.FilePath, &u.CreatedAt); err != nil {
		return nil, serr.Wrap(err, "failed to scan upload")
	}
	return &u, nil
}
