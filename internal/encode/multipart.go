package encode

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// File is a multipart upload part. Either Path or Reader must be set.
type File struct {
	Path        string    // read at encode time
	Reader      io.Reader // used instead of Path when non-nil
	Name        string    // filename sent in the part; defaults to base(Path)
	ContentType string    // defaults to application/octet-stream
}

// Multipart encodes params as a multipart/form-data body and returns it with
// the Content-Type (boundary included). File values become file parts,
// slices repeat the field, everything else goes through Scalar.
func Multipart(params map[string]any) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range sortedKeys(params) {
		if err := writePart(w, k, params[k]); err != nil {
			return nil, "", fmt.Errorf("multipart %q: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart close: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, name string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case File:
		return writeFile(w, name, t)
	case *File:
		if t == nil {
			return nil
		}
		return writeFile(w, name, *t)
	case []any:
		for _, item := range t {
			if err := writePart(w, name, item); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, item := range t {
			if err := w.WriteField(name, item); err != nil {
				return err
			}
		}
		return nil
	}
	if items, ok := asSlice(v); ok {
		return writePart(w, name, items)
	}
	return w.WriteField(name, Scalar(v))
}

func writeFile(w *multipart.Writer, field string, f File) error {
	src := f.Reader
	filename := f.Name
	if src == nil {
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("file part needs a path or a reader")
		}
		cleanPath := filepath.Clean(f.Path)

		// sanity: ensure it's not a directory
		fi, err := os.Stat(cleanPath)
		if err != nil {
			return fmt.Errorf("stat %q: %w", cleanPath, err)
		}
		if fi.IsDir() {
			return fmt.Errorf("%q is a directory, need a file", cleanPath)
		}
		fh, err := os.Open(cleanPath)
		if err != nil {
			return fmt.Errorf("open %q: %w", cleanPath, err)
		}
		defer fh.Close()
		src = fh
		if filename == "" {
			filename = filepath.Base(cleanPath)
		}
	}
	if filename == "" {
		filename = field
	}

	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}
