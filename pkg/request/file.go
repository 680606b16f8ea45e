package request

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File describes one uploaded file. A handle is returned even when no file
// was uploaded under a field, with Exists reporting false, so callers can
// check uniformly without nil guards.
type File struct {
	// Field is the form field the file was uploaded under.
	Field string
	// ClientName is the file name as sent by the client.
	ClientName string
	// TmpPath is where the body parser stored the upload.
	TmpPath string
	// Size is the upload size in bytes.
	Size int64
	// ContentType is the media type declared in the part headers.
	ContentType string

	exists bool
}

// NewFile creates a handle for an upload that is actually present.
func NewFile(field, clientName, tmpPath string, size int64, contentType string) *File {
	return &File{
		Field:       field,
		ClientName:  clientName,
		TmpPath:     tmpPath,
		Size:        size,
		ContentType: contentType,
		exists:      true,
	}
}

// Exists reports whether an upload was present under the handle's field.
func (f *File) Exists() bool { return f.exists }

// Extension returns the client file name's extension without the dot.
func (f *File) Extension() string {
	return strings.TrimPrefix(filepath.Ext(f.ClientName), ".")
}

// Move relocates the stored upload into dir under name. When name is empty
// the client file name is used. The handle's TmpPath tracks the new
// location.
func (f *File) Move(dir, name string) error {
	if !f.exists {
		return fmt.Errorf("request: no file uploaded under field %q", f.Field)
	}
	if name == "" {
		name = f.ClientName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("request: failed to create upload dir: %w", err)
	}
	dest := filepath.Join(dir, name)
	if err := os.Rename(f.TmpPath, dest); err != nil {
		return fmt.Errorf("request: failed to move upload: %w", err)
	}
	f.TmpPath = dest
	return nil
}

// SetFiles attaches the uploaded files in upload order. Called by the
// multipart-parsing collaborator.
func (r *Request) SetFiles(files []*File) {
	r.uploads = files
}

// File returns the first file uploaded under field. When none was uploaded
// the returned handle has Exists() == false; the result is never nil.
func (r *Request) File(field string) *File {
	for _, f := range r.uploads {
		if f.Field == field {
			return f
		}
	}
	return &File{Field: field}
}

// Files returns every uploaded file across all fields as one flat list in
// upload order.
func (r *Request) Files() []*File {
	out := make([]*File, len(r.uploads))
	copy(out, r.uploads)
	return out
}
