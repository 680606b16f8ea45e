package request

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestRequest_File_ExistsAndMissing(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodPost, "/")
	req.SetFiles([]*File{
		NewFile("logo", "logo.png", "/tmp/abc", 512, "image/png"),
	})

	logo := req.File("logo")
	if !logo.Exists() {
		t.Error("File(logo) should exist")
	}
	if logo.ClientName != "logo.png" || logo.Size != 512 {
		t.Errorf("File(logo) = %+v", logo)
	}

	missing := req.File("banner")
	if missing == nil {
		t.Fatal("File(banner) must not be nil for an absent upload")
	}
	if missing.Exists() {
		t.Error("File(banner) should not exist")
	}
	if missing.Field != "banner" {
		t.Errorf("missing handle field = %q, want banner", missing.Field)
	}
}

func TestRequest_File_FirstOfField(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodPost, "/")
	req.SetFiles([]*File{
		NewFile("photos", "a.jpg", "/tmp/a", 1, "image/jpeg"),
		NewFile("photos", "b.jpg", "/tmp/b", 2, "image/jpeg"),
	})

	if got := req.File("photos").ClientName; got != "a.jpg" {
		t.Errorf("File(photos) = %q, want the first upload a.jpg", got)
	}
}

func TestRequest_Files_FlatUploadOrder(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodPost, "/")
	req.SetFiles([]*File{
		NewFile("photos", "a.jpg", "/tmp/a", 1, "image/jpeg"),
		NewFile("doc", "cv.pdf", "/tmp/c", 3, "application/pdf"),
		NewFile("photos", "b.jpg", "/tmp/b", 2, "image/jpeg"),
	})

	files := req.Files()
	if len(files) != 3 {
		t.Fatalf("Files() = %d entries, want 3", len(files))
	}
	wantNames := []string{"a.jpg", "cv.pdf", "b.jpg"}
	for i, want := range wantNames {
		if files[i].ClientName != want {
			t.Errorf("Files()[%d] = %q, want %q", i, files[i].ClientName, want)
		}
	}
}

func TestFile_Extension(t *testing.T) {
	t.Parallel()

	f := NewFile("doc", "report.PDF", "/tmp/x", 1, "application/pdf")
	if got := f.Extension(); got != "PDF" {
		t.Errorf("Extension() = %q, want PDF", got)
	}
	bare := NewFile("doc", "README", "/tmp/y", 1, "text/plain")
	if got := bare.Extension(); got != "" {
		t.Errorf("Extension() without dot = %q, want empty", got)
	}
}

func TestFile_Move(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "spooled")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := NewFile("doc", "report.pdf", src, 7, "application/pdf")
	dest := filepath.Join(dir, "stored")
	if err := f.Move(dest, ""); err != nil {
		t.Fatalf("Move: %v", err)
	}

	moved := filepath.Join(dest, "report.pdf")
	if _, err := os.Stat(moved); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
	if f.TmpPath != moved {
		t.Errorf("TmpPath = %q, want %q", f.TmpPath, moved)
	}
}

func TestFile_Move_MissingUpload(t *testing.T) {
	t.Parallel()

	f := &File{Field: "avatar"}
	if err := f.Move(t.TempDir(), ""); err == nil {
		t.Error("Move on a missing upload should fail")
	}
}
