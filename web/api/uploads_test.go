package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"starterkit/config"
	"starterkit/models"
	"starterkit/web"
	"starterkit/web/api"

	"github.com/vmihailenco/msgpack/v5"
)

const testAddress = ":8097"

var (
	baseURL   = "http://localhost" + testAddress
	uploadDir string
	client    = &http.Client{Timeout: 5 * time.Second}
)

// TestMain starts one server for the package against a throwaway database
func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "starterkit-api")
	if err != nil {
		fmt.Println("failed to create temp dir:", err)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Address = testAddress
	cfg.DBPath = filepath.Join(tmp, "test_uploads.ddb")
	cfg.UploadDir = filepath.Join(tmp, "uploads")
	cfg.PublicURL = baseURL
	cfg.MaxUploadBytes = 1 << 20
	cfg.UploadRate = 1000
	uploadDir = cfg.UploadDir

	if err := models.InitDB(cfg.DBPath); err != nil {
		fmt.Println("failed to initialize test database:", err)
		os.Exit(1)
	}

	srv := web.NewServer(cfg)
	go func() {
		srv.Run()
	}()
	time.Sleep(200 * time.Millisecond)

	code := m.Run()

	models.CloseDB()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// postFile sends a multipart upload with the given field name
func postFile(t *testing.T, field, filename string, content []byte) (int, api.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	w.Close()

	resp, err := client.Post(baseURL+"/upload", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	var out api.APIResponse
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func getJSON(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// TestUploadAndResolve covers upload, lookup by id and download
func TestUploadAndResolve(t *testing.T) {
	status, out := postFile(t, "file", "hello.txt", []byte("hello world"))
	if status != http.StatusCreated {
		t.Fatalf("upload status = %d, want %d (error: %s)", status, http.StatusCreated, out.Error)
	}

	data := out.Data.(map[string]interface{})
	if data["filename"] != "hello.txt" {
		t.Errorf("filename = %v, want hello.txt", data["filename"])
	}
	id := int64(data["id"].(float64))

	if _, err := os.Stat(filepath.Join(uploadDir, "hello.txt")); err != nil {
		t.Errorf("uploaded file should exist on disk: %v", err)
	}

	status, body := getJSON(t, fmt.Sprintf("/file/%d", id))
	if status != http.StatusOK {
		t.Fatalf("GET /file/%d status = %d", id, status)
	}
	fileURL := body["data"].(map[string]interface{})["file_url"]
	if fileURL != baseURL+"/uploads/hello.txt" {
		t.Errorf("file_url = %v", fileURL)
	}

	resp, err := client.Get(baseURL + "/uploads/hello.txt")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer resp.Body.Close()
	content, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(content) != "hello world" {
		t.Errorf("download = %d %q", resp.StatusCode, content)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", resp.Header.Get("Content-Type"))
	}
}

// TestUploadStripsDirectories verifies client paths never escape the upload dir
func TestUploadStripsDirectories(t *testing.T) {
	status, out := postFile(t, "file", "../../etc/evil.txt", []byte("x"))
	if status != http.StatusCreated {
		t.Fatalf("upload status = %d (error: %s)", status, out.Error)
	}
	if name := out.Data.(map[string]interface{})["filename"]; name != "evil.txt" {
		t.Errorf("filename = %v, want evil.txt", name)
	}
}

// TestUploadErrors covers the rejected upload shapes
func TestUploadErrors(t *testing.T) {
	t.Run("wrong field", func(t *testing.T) {
		status, out := postFile(t, "other", "a.txt", []byte("x"))
		if status != http.StatusBadRequest || out.Error != "No file provided" {
			t.Errorf("got %d %q, want 400 No file provided", status, out.Error)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/upload", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("form without file", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		w.WriteField("note", "no file here")
		w.Close()

		resp, err := client.Post(baseURL+"/upload", w.FormDataContentType(), &buf)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("too large", func(t *testing.T) {
		status, _ := postFile(t, "file", "big.bin", bytes.Repeat([]byte("a"), 2<<20))
		if status != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", status)
		}
	})
}

// TestFileLookupErrors covers bad and unknown ids
func TestFileLookupErrors(t *testing.T) {
	if status, _ := getJSON(t, "/file/abc"); status != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", status)
	}

	status, body := getJSON(t, "/file/999999")
	if status != http.StatusNotFound || body["error"] != "File not found" {
		t.Errorf("unknown id = %d %v, want 404 File not found", status, body["error"])
	}

	rec, err := models.CreateUpload("nopath.txt", "")
	if err != nil {
		t.Fatalf("CreateUpload() unexpected error: %v", err)
	}
	if status, _ := getJSON(t, fmt.Sprintf("/file/%d", rec.ID)); status != http.StatusBadRequest {
		t.Errorf("upload without path status = %d, want 400", status)
	}
}

// TestServeMissingFile verifies unknown downloads are 404
func TestServeMissingFile(t *testing.T) {
	resp, err := client.Get(baseURL + "/uploads/does-not-exist.png")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

// TestServeRejectsSeparators verifies encoded path separators never reach the upload dir
func TestServeRejectsSeparators(t *testing.T) {
	if status, out := postFile(t, "file", "served.txt", []byte("served")); status != http.StatusCreated {
		t.Fatalf("upload status = %d (error: %s)", status, out.Error)
	}

	paths := []string{
		"/uploads/..%2Fx",
		"/uploads/..%2F..%2Fetc%2Fpasswd",
		"/uploads/nested%2Fserved.txt",
		"/uploads/..%5Cserved.txt",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
			}
		})
	}
}

// TestUploadWithOtherFields verifies the file is found among ordinary form fields
func TestUploadWithOtherFields(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("note", "ignored")
	part, err := w.CreateFormFile("file", "doc.pdf")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4"))
	w.WriteField("trailer", "also ignored")
	w.Close()

	resp, err := client.Post(baseURL+"/upload", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	var out api.APIResponse
	json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", resp.StatusCode, out.Error)
	}
	if name := out.Data.(map[string]interface{})["filename"]; name != "doc.pdf" {
		t.Errorf("filename = %v, want doc.pdf", name)
	}

	stored, err := os.ReadFile(filepath.Join(uploadDir, "doc.pdf"))
	if err != nil || string(stored) != "%PDF-1.4" {
		t.Errorf("stored file = %q, %v", stored, err)
	}
}

// TestListUploads covers the JSON and msgpack listings
func TestListUploads(t *testing.T) {
	if status, out := postFile(t, "file", "listed.png", []byte{0x89, 'P', 'N', 'G'}); status != http.StatusCreated {
		t.Fatalf("upload status = %d (error: %s)", status, out.Error)
	}
	want := baseURL + "/uploads/listed.png"

	status, body := getJSON(t, "/uploads")
	if status != http.StatusOK {
		t.Fatalf("GET /uploads status = %d", status)
	}
	files := body["data"].(map[string]interface{})["uploaded_files"].([]interface{})
	found := false
	for _, f := range files {
		if f == want {
			found = true
		}
	}
	if !found {
		t.Errorf("listing %v should contain %s", files, want)
	}

	req, _ := http.NewRequest(http.MethodGet, baseURL+"/uploads", nil)
	req.Header.Set("Accept", api.MsgPackContentType)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("msgpack request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != api.MsgPackContentType {
		t.Errorf("Content-Type = %q, want %s", resp.Header.Get("Content-Type"), api.MsgPackContentType)
	}
	raw, _ := io.ReadAll(resp.Body)
	var packed api.FileListOutput
	if err := msgpack.Unmarshal(raw, &packed); err != nil {
		t.Fatalf("failed to decode msgpack listing: %v", err)
	}
	if len(packed.UploadedFiles) != len(files) {
		t.Errorf("msgpack listing has %d files, JSON has %d", len(packed.UploadedFiles), len(files))
	}
}

// TestUploadRecords verifies stored rows are listed newest first
func TestUploadRecords(t *testing.T) {
	if status, out := postFile(t, "file", "record.txt", []byte("r")); status != http.StatusCreated {
		t.Fatalf("upload status = %d (error: %s)", status, out.Error)
	}

	status, body := getJSON(t, "/api/v1/uploads")
	if status != http.StatusOK {
		t.Fatalf("GET /api/v1/uploads status = %d", status)
	}
	rows := body["data"].([]interface{})
	if len(rows) == 0 {
		t.Fatal("records should not be empty after an upload")
	}
	if first := rows[0].(map[string]interface{}); first["filename"] != "record.txt" {
		t.Errorf("newest record = %v, want record.txt", first["filename"])
	}
}

// TestHealth verifies the health endpoint
func TestHealth(t *testing.T) {
	status, body := getJSON(t, "/health")
	if status != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("health = %d %v", status, body)
	}
}
