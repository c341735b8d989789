package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/thumbnail"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// stubPreviewer fails for names in fail and panics for names in explode.
type stubPreviewer struct {
	fail    map[string]bool
	explode map[string]bool
	calls   atomic.Int32
}

func (s *stubPreviewer) Preview(_ context.Context, name string, _ []byte) (thumbnail.Preview, error) {
	s.calls.Add(1)
	if s.explode[name] {
		panic("decoder blew up")
	}
	if s.fail[name] {
		return thumbnail.Preview{}, fmt.Errorf("preview for %s: %w", name, thumbnail.ErrUndecodable)
	}
	return thumbnail.Preview{Data: []byte("p"), ContentType: "image/jpeg", Width: 200, Height: 100, Source: thumbnail.SourceImage}, nil
}

func names(records []batch.ImageRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.OriginalName
	}
	return out
}

func TestProcessRejectsOverLimitWhole(t *testing.T) {
	p := New(&stubPreviewer{}, Options{})
	data := []byte("x")

	uploads := []Upload{
		FromBytes("a.jpg", "image/jpeg", data),
		FromBytes("b.jpg", "image/jpeg", data),
		FromBytes("c.jpg", "image/jpeg", data),
	}

	res, err := p.Process(context.Background(), uploads, 9)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("Process() error = %v, want ErrTooManyFiles", err)
	}
	if len(res.Records) != 0 || len(res.Rejections) != 0 {
		t.Errorf("Process() admitted %d records on refusal", len(res.Records))
	}
	if !strings.Contains(err.Error(), "11") {
		t.Errorf("error %q does not mention the limit", err)
	}

	res, err = p.Process(context.Background(), uploads[:2], 9)
	if err != nil {
		t.Fatalf("Process() at the limit: %v", err)
	}
	if len(res.Records) != 2 {
		t.Errorf("Process() at the limit admitted %d, want 2", len(res.Records))
	}
}

func TestProcessMixedUploadKeepsOrder(t *testing.T) {
	stub := &stubPreviewer{fail: map[string]bool{"broken.jpg": true}}
	p := New(stub, Options{MaxFileSize: 10})

	uploads := []Upload{
		FromBytes("one.JPG", "", []byte("0123")),
		FromBytes("notes.txt", "text/plain", []byte("hi")),
		FromBytes("big.png", "image/png", bytes.Repeat([]byte{1}, 11)),
		FromBytes("broken.jpg", "image/jpeg", []byte("zz")),
		FromBytes("two.arw", "", []byte("raw")),
		FromBytes("both.gif", "image/gif", bytes.Repeat([]byte{1}, 20)),
	}

	res, err := p.Process(context.Background(), uploads, 0)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := names(res.Records), []string{"one.JPG", "two.arw"}; !reflect.DeepEqual(got, want) {
		t.Errorf("accepted = %v, want %v", got, want)
	}

	want := []Rejection{
		{Name: "notes.txt", Reasons: []string{ReasonInvalidType}},
		{Name: "big.png", Reasons: []string{ReasonTooLarge}},
		{Name: "broken.jpg", Reasons: []string{ReasonPreviewFailed}},
		{Name: "both.gif", Reasons: []string{ReasonInvalidType, ReasonTooLarge}},
	}
	if !reflect.DeepEqual(res.Rejections, want) {
		t.Errorf("rejections = %+v\nwant %+v", res.Rejections, want)
	}

	// Only files that passed validation reach the previewer.
	if got := stub.calls.Load(); got != 3 {
		t.Errorf("previewer called %d times, want 3", got)
	}
}

func TestProcessRecordFields(t *testing.T) {
	p := New(&stubPreviewer{}, Options{})
	data := []byte("original bytes")

	res, err := p.Process(context.Background(), []Upload{
		FromBytes("IMG_0042.JPEG", "image/jpeg", data),
		FromBytes("noext", "image/png", data),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("accepted %d records, want 2", len(res.Records))
	}

	first := res.Records[0]
	if first.Extension != "jpeg" {
		t.Errorf("Extension = %q, want jpeg", first.Extension)
	}
	if !bytes.Equal(first.Data, data) || first.SizeBytes != int64(len(data)) {
		t.Error("record content differs from upload")
	}
	if first.HasDescriptor() {
		t.Error("new record has a descriptor")
	}
	if first.Preview.Width != 200 || first.Preview.ContentType != "image/jpeg" {
		t.Errorf("preview = %+v", first.Preview)
	}
	if res.Records[1].Extension != "jpg" {
		t.Errorf("Extension without suffix = %q, want jpg", res.Records[1].Extension)
	}
	if first.ID == "" || first.ID == res.Records[1].ID {
		t.Errorf("ids not unique: %q, %q", first.ID, res.Records[1].ID)
	}
}

func TestProcessRecoversFromPanics(t *testing.T) {
	stub := &stubPreviewer{explode: map[string]bool{"bad.png": true}}
	p := New(stub, Options{Workers: 2})

	res, err := p.Process(context.Background(), []Upload{
		FromBytes("bad.png", "", []byte("x")),
		FromBytes("good.png", "", []byte("x")),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(res.Records); !reflect.DeepEqual(got, []string{"good.png"}) {
		t.Errorf("accepted = %v", got)
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Name != "bad.png" {
		t.Errorf("rejections = %+v", res.Rejections)
	}
}

func TestProcessEnforcesActualSize(t *testing.T) {
	p := New(&stubPreviewer{}, Options{MaxFileSize: 8})

	// Declared size understates the real content.
	u := FromBytes("liar.jpg", "", bytes.Repeat([]byte{7}, 32))
	u.Size = 4

	res, err := p.Process(context.Background(), []Upload{u}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 {
		t.Fatal("oversized content was admitted")
	}
	if got := res.Rejections[0].Reasons; !reflect.DeepEqual(got, []string{ReasonTooLarge}) {
		t.Errorf("reasons = %v", got)
	}
}

type gateFunc func(ctx context.Context) error

func (f gateFunc) Wait(ctx context.Context) error { return f(ctx) }

func TestProcessWaitsOnGate(t *testing.T) {
	var waits atomic.Int32
	open := gateFunc(func(context.Context) error {
		waits.Add(1)
		return nil
	})
	p := New(&stubPreviewer{}, Options{Gate: open})

	res, err := p.Process(context.Background(), []Upload{
		FromBytes("a.jpg", "", []byte("x")),
		FromBytes("b.gif", "", []byte("x")),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d", len(res.Records))
	}
	// Invalid files are rejected before anything is read.
	if got := waits.Load(); got != 1 {
		t.Errorf("gate waited %d times, want 1", got)
	}

	closed := gateFunc(func(context.Context) error { return context.Canceled })
	stub := &stubPreviewer{}
	p = New(stub, Options{Gate: closed})

	res, err = p.Process(context.Background(), []Upload{FromBytes("a.jpg", "", []byte("x"))}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 || len(res.Rejections) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := res.Rejections[0].Reasons; !reflect.DeepEqual(got, []string{ReasonUnreadable}) {
		t.Errorf("reasons = %v", got)
	}
	if stub.calls.Load() != 0 {
		t.Error("previewer called after the gate refused")
	}
}

func TestProcessWithExtractor(t *testing.T) {
	p := New(thumbnail.NewExtractor(thumbnail.Options{}), Options{})

	res, err := p.Process(context.Background(), []Upload{
		FromBytes("shot.jpg", "image/jpeg", jpegBytes(t, 400, 300)),
		FromBytes("DSC01234.ARW", "", []byte("II*\x00no embedded preview here")),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("accepted %d, rejections %+v", len(res.Records), res.Rejections)
	}

	if pv := res.Records[0].Preview; pv.Width != 200 || pv.Height != 150 || pv.Placeholder {
		t.Errorf("jpeg preview = %dx%d placeholder=%v", pv.Width, pv.Height, pv.Placeholder)
	}
	raw := res.Records[1]
	if !raw.Preview.Placeholder || raw.Preview.ContentType != thumbnail.PlaceholderContentType {
		t.Errorf("raw preview = %+v, want placeholder", raw.Preview)
	}
	if raw.Extension != "arw" {
		t.Errorf("raw Extension = %q", raw.Extension)
	}
}

func TestProcessRejectsOversizedImageOnly(t *testing.T) {
	p := New(thumbnail.NewExtractor(thumbnail.Options{}), Options{})

	res, err := p.Process(context.Background(), []Upload{
		FromBytes("strip.jpg", "image/jpeg", jpegBytes(t, 1, 40000)),
		FromBytes("front.jpg", "image/jpeg", jpegBytes(t, 400, 300)),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(res.Records); !reflect.DeepEqual(got, []string{"front.jpg"}) {
		t.Errorf("accepted %v, want [front.jpg]", got)
	}
	want := []Rejection{{Name: "strip.jpg", Reasons: []string{ReasonPreviewFailed}}}
	if !reflect.DeepEqual(res.Rejections, want) {
		t.Errorf("Rejections = %+v, want %+v", res.Rejections, want)
	}
}

func TestReadFactsWithoutExif(t *testing.T) {
	if got := readFacts("plain.jpg", jpegBytes(t, 8, 8)); got != (batch.Facts{}) {
		t.Errorf("readFacts() = %+v, want zero", got)
	}
	if got := readFacts("junk", []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}); got != (batch.Facts{}) {
		t.Errorf("readFacts() on truncated data = %+v, want zero", got)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "front.png")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	u, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "front.png" || u.Size != 7 {
		t.Errorf("FromFile() = %q size %d", u.Name, u.Size)
	}
	if u.DeclaredType != "image/png" {
		t.Errorf("DeclaredType = %q, want image/png", u.DeclaredType)
	}

	p := New(&stubPreviewer{}, Options{})
	data, err := p.read(u)
	if err != nil || string(data) != "content" {
		t.Errorf("read() = %q, %v", data, err)
	}

	if _, err := FromFile(dir); err == nil {
		t.Error("FromFile(dir) succeeded")
	}
	if _, err := FromFile(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("FromFile(missing) succeeded")
	}
}

func TestRejectionString(t *testing.T) {
	r := Rejection{Name: "a.gif", Reasons: []string{ReasonInvalidType, ReasonTooLarge}}
	want := "a.gif: Invalid file type. Use JPG, PNG, or ARW, File too large (max 50MB)"
	if got := r.String(); got != want {
		t.Errorf("String() = %q", got)
	}
}
