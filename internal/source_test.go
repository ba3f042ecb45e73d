package internal

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

type fakeDownloader struct {
	s3manageriface.DownloaderAPI
	objects map[string][]byte
}

func (f *fakeDownloader) DownloadWithContext(_ aws.Context, w io.WriterAt, input *s3.GetObjectInput, _ ...func(*s3manager.Downloader)) (int64, error) {
	data, ok := f.objects[aws.StringValue(input.Bucket)+"/"+aws.StringValue(input.Key)]
	if !ok {
		return 0, errors.New("NoSuchKey: The specified key does not exist.")
	}
	n, err := w.WriteAt(data, 0)
	return int64(n), err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(w, h)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSourceLoaderHTTP(t *testing.T) {
	data := pngBytes(t, 40, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/brand/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	sl := NewSourceLoader(newTestLog(), WithHTTPClient(srv.Client()))
	img, err := sl.Load(context.Background(), srv.URL+"/brand/logo.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("bounds = %v", b)
	}

	if len(sl.cleanUpFiles) != 1 {
		t.Fatalf("expected one temp file, got %v", sl.cleanUpFiles)
	}
	tmp := sl.cleanUpFiles[0]
	sl.Cleanup()
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("temp file %s should be removed, stat: %v", tmp, err)
	}

	_, err = sl.Load(context.Background(), srv.URL+"/missing.png")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("error = %v, want %v", err, ErrSourceNotFound)
	}
	sl.Cleanup()
}

func TestSourceLoaderS3(t *testing.T) {
	downloader := &fakeDownloader{objects: map[string][]byte{
		"assets/logo.png": pngBytes(t, 10, 30),
		"assets/bad.png":  []byte("garbage"),
	}}
	sl := NewSourceLoader(newTestLog(), WithDownloader(downloader))
	defer sl.Cleanup()

	tests := []struct {
		src     string
		wantErr error
	}{
		{"s3://assets/logo.png", nil},
		{"s3://assets/missing.png", ErrSourceNotFound},
		{"s3://assets/bad.png", ErrDecode},
		{"s3://assets", ErrSourceNotFound},
		{"ftp://example.com/logo.png", ErrSourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			img, err := sl.Load(context.Background(), tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 30 {
					t.Errorf("bounds = %v", b)
				}
			}
		})
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/brand/logo.png", "png", false},
		{"photo.JPEG", "JPEG", false},
		{"/dir.d/noext", "", true},
		{"/trailing.", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := getFileExtension(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("getFileExtension(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("getFileExtension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSourceLoaderLocalPaths(t *testing.T) {
	dir := t.TempDir()
	colon := filepath.Join(dir, "icon:v2.png")
	encodePNG(t, colon, gradient(24, 12))

	tests := []struct {
		name string
		src  string
	}{
		{"absolute with colon", colon},
		{"file url", "file://" + colon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := NewSourceLoader(newTestLog())
			img, err := sl.Load(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 12 {
				t.Errorf("bounds = %v", b)
			}
			if len(sl.cleanUpFiles) != 0 {
				t.Errorf("local source should not be copied, got %v", sl.cleanUpFiles)
			}
		})
	}

	t.Run("relative with colon", func(t *testing.T) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })

		img, err := NewSourceLoader(newTestLog()).Load(context.Background(), "icon:v2.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 12 {
			t.Errorf("bounds = %v", b)
		}
	})
}

func TestSourceLoaderUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	src := writeTestPNG(t, t.TempDir(), 16, 16)
	if err := os.Chmod(src, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(src, 0o644) })

	_, err := NewSourceLoader(newTestLog()).Load(context.Background(), src)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("error = %v, want %v", err, ErrSourceNotFound)
	}
}
