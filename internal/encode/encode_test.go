package encode_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodrovis/ternary/internal/encode"
)

func TestJSON_DisablesHTMLEscaping_NoTrailingNewline(t *testing.T) {
	in := map[string]any{
		"raw": "<script>alert('x')</script>",
		"url": "http://a/b",
		"&":   "ampersand",
	}

	out, err := encode.JSON(in)
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	s := string(out)

	if strings.Contains(s, `\u003c`) || strings.Contains(s, `\u003e`) || strings.Contains(s, `\u0026`) {
		t.Fatalf("found escaped HTML in output: %q", s)
	}
	if strings.Contains(s, `\/`) {
		t.Fatalf("slashes must not be escaped: %q", s)
	}
	if strings.HasSuffix(s, "\n") {
		t.Fatalf("output must not end with newline, got: %q", s)
	}

	var rt map[string]any
	if err := json.Unmarshal(out, &rt); err != nil {
		t.Fatalf("round-trip unmarshal failed: %v\npayload: %q", err, s)
	}
}

func TestJSON_EmptyParamsEncodeAsEmptyList(t *testing.T) {
	for _, in := range []any{nil, map[string]any{}, []any{}} {
		out, err := encode.JSON(in)
		if err != nil {
			t.Fatalf("JSON(%#v) error: %v", in, err)
		}
		if string(out) != "[]" {
			t.Fatalf("JSON(%#v) = %q, want []", in, out)
		}
	}
}

func TestJSON_ErrorOnUnsupportedValues(t *testing.T) {
	// encoding/json rejects NaN/Inf
	if _, err := encode.JSON(map[string]any{"bad": math.Inf(1)}); err == nil {
		t.Fatalf("expected error for unsupported value, got nil")
	}
	type payload struct {
		C chan int `json:"c"`
	}
	_, err := encode.JSON(payload{C: make(chan int)})
	if err == nil || !strings.Contains(err.Error(), "encode body:") {
		t.Fatalf("error should be wrapped with context, got: %v", err)
	}
}

func TestFlatten_NestedAndScalars(t *testing.T) {
	v := encode.Flatten(map[string]any{
		"a":    1,
		"b":    true,
		"c":    nil,
		"f":    1.5,
		"list": []any{"x", "y"},
		"user": map[string]any{"name": "bob", "tags": []string{"p"}},
	})

	want := map[string]string{
		"a":             "1",
		"b":             "1",
		"f":             "1.5",
		"list[0]":       "x",
		"list[1]":       "y",
		"user[name]":    "bob",
		"user[tags][0]": "p",
	}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Fatalf("%s = %q, want %q (all=%v)", k, got, w, v)
		}
	}
	if v.Has("c") {
		t.Fatalf("nil values must be skipped")
	}
}

type namedParams map[string]any

func TestFlatten_TypedSlicesAndMaps(t *testing.T) {
	v := encode.Flatten(map[string]any{
		"ids":   []int{1, 2},
		"pair":  [2]string{"l", "r"},
		"rows":  []map[string]any{{"id": 7}, {"id": 8}},
		"named": []namedParams{{"k": "v"}},
		"raw":   []byte("bytes"),
	})

	want := map[string]string{
		"ids[0]":      "1",
		"ids[1]":      "2",
		"pair[0]":     "l",
		"pair[1]":     "r",
		"rows[0][id]": "7",
		"rows[1][id]": "8",
		"named[0][k]": "v",
		"raw":         "bytes",
	}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Fatalf("%s = %q, want %q (all=%v)", k, got, w, v)
		}
	}
	if v.Has("ids") || v.Has("rows") {
		t.Fatalf("slices must not be sent as one value: %v", v)
	}
}

func TestForm_Encodes(t *testing.T) {
	got := string(encode.Form(map[string]any{"b": "x y", "a": 2}))
	if got != "a=2&b=x+y" {
		t.Fatalf("Form = %q", got)
	}
}

func TestMultipart_FieldsAndFiles(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "en.json")
	if err := os.WriteFile(fp, []byte(`{"hello":"world"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	body, ct, err := encode.Multipart(map[string]any{
		"lang":   "en",
		"file":   encode.File{Path: fp},
		"blob":   &encode.File{Reader: strings.NewReader("raw"), Name: "b.txt", ContentType: "text/plain"},
		"labels": []string{"a", "b"},
		"ids":    []int{3, 4},
	})
	if err != nil {
		t.Fatalf("Multipart: %v", err)
	}

	mt, mp, err := mime.ParseMediaType(ct)
	if err != nil || mt != encode.ContentTypeMultipart || mp["boundary"] == "" {
		t.Fatalf("content type = %q (%v)", ct, err)
	}

	r := multipart.NewReader(bytes.NewReader(body), mp["boundary"])
	fields := map[string][]string{}
	files := map[string]string{}
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		data, _ := io.ReadAll(p)
		if p.FileName() != "" {
			files[p.FileName()] = string(data)
			continue
		}
		fields[p.FormName()] = append(fields[p.FormName()], string(data))
	}

	if files["en.json"] != `{"hello":"world"}` {
		t.Fatalf("file part = %q", files["en.json"])
	}
	if files["b.txt"] != "raw" {
		t.Fatalf("reader part = %q", files["b.txt"])
	}
	if got := fields["ids"]; len(got) != 2 || got[0] != "3" || got[1] != "4" {
		t.Fatalf("typed slice fields = %#v", got)
	}
	if len(fields["labels"]) != 2 || fields["lang"][0] != "en" {
		t.Fatalf("fields = %#v", fields)
	}
}

func TestMultipart_RejectsDirectoryAndMissingFile(t *testing.T) {
	if _, _, err := encode.Multipart(map[string]any{"f": encode.File{Path: t.TempDir()}}); err == nil {
		t.Fatalf("expected error for directory")
	}
	if _, _, err := encode.Multipart(map[string]any{"f": encode.File{Path: "/nope/missing.bin"}}); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, _, err := encode.Multipart(map[string]any{"f": encode.File{}}); err == nil {
		t.Fatalf("expected error for empty file part")
	}
}
