package internal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const DefaultSourceFormat = "png"

// SourceLoader resolves a source reference (local path, http(s) URL or
// s3://bucket/key) to a decoded, EXIF-oriented image. Remote sources are
// fetched into temporary files that Cleanup removes.
type SourceLoader struct {
	log          *StdLog
	client       *http.Client
	downloader   s3manageriface.DownloaderAPI
	region       string
	cleanUpFiles []string
}

type SourceOption func(sl *SourceLoader)

func WithHTTPClient(c *http.Client) SourceOption {
	return func(sl *SourceLoader) { sl.client = c }
}

func WithDownloader(d s3manageriface.DownloaderAPI) SourceOption {
	return func(sl *SourceLoader) { sl.downloader = d }
}

func WithSourceRegion(region string) SourceOption {
	return func(sl *SourceLoader) { sl.region = region }
}

func NewSourceLoader(log *StdLog, opts ...SourceOption) *SourceLoader {
	sl := &SourceLoader{
		log:    log,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(sl)
	}
	return sl
}

func (sl *SourceLoader) Load(ctx context.Context, src string) (image.Image, error) {
	path, err := sl.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, src, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrSourceNotFound, src)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, src, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, src, err)
	}
	sl.log.Debug("Decoded source %s: %dx%d", src, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// resolve returns a local path for src. Only http(s), s3 and file URLs are
// remote references; anything else, such as "icon:v2.png" or a Windows drive
// path, is a local file name.
func (sl *SourceLoader) resolve(ctx context.Context, src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return src, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return sl.downloadFromURL(ctx, u)
	case "s3":
		return sl.downloadFromS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "file":
		return u.Path, nil
	}
	return src, nil
}

func (sl *SourceLoader) downloadFromURL(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceNotFound, u, err)
	}
	response, err := sl.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: failed to make HTTP request: %v", ErrSourceNotFound, u, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			sl.log.Error("error closing source download request body: %v", err)
		}
	}(response.Body)
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: unexpected status code: %d", ErrSourceNotFound, u, response.StatusCode)
	}

	tempFile, err := sl.createTemp(u.Path)
	if err != nil {
		return "", err
	}
	defer sl.closeTemp(tempFile)
	_, err = io.Copy(tempFile, response.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: failed to copy response body to file: %v", ErrSourceNotFound, u, err)
	}
	sl.log.Debug("Receive source from %s", u)
	return tempFile.Name(), nil
}

func (sl *SourceLoader) downloadFromS3(ctx context.Context, bucketName, key string) (string, error) {
	src := fmt.Sprintf("s3://%s/%s", bucketName, key)
	if bucketName == "" || key == "" {
		return "", fmt.Errorf("%w: %s: bucket and key are required", ErrSourceNotFound, src)
	}
	if sl.downloader == nil {
		sess, err := newSession(sl.region)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrSourceNotFound, src, err)
		}
		sl.downloader = s3manager.NewDownloader(sess)
	}

	tempFile, err := sl.createTemp(key)
	if err != nil {
		return "", err
	}
	defer sl.closeTemp(tempFile)
	_, err = sl.downloader.DownloadWithContext(ctx, tempFile,
		&s3.GetObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
		})
	if err != nil {
		return "", fmt.Errorf("%w: %s: failed to download file: %v", ErrSourceNotFound, src, err)
	}
	sl.log.Debug("Receive source from S3 %s", src)
	return tempFile.Name(), nil
}

func (sl *SourceLoader) createTemp(remotePath string) (*os.File, error) {
	format, err := getFileExtension(remotePath)
	if err != nil {
		sl.log.Debug("can't identify source image format: %v", err)
		format = DefaultSourceFormat
	}
	tempFile, err := os.CreateTemp("", fmt.Sprintf("%s-*.%s", uuid.New(), format))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary file: %v", ErrSourceNotFound, err)
	}
	sl.cleanUpFiles = append(sl.cleanUpFiles, tempFile.Name())
	return tempFile, nil
}

func (sl *SourceLoader) closeTemp(f *os.File) {
	if err := f.Close(); err != nil {
		sl.log.Error("error closing source temporary file: %v", err)
	}
}

// Cleanup removes every temporary file created by Load.
func (sl *SourceLoader) Cleanup() {
	for _, toDelete := range sl.cleanUpFiles {
		err := os.Remove(toDelete)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			sl.log.Error("error clean up file delete: %v", err)
		}
	}
	sl.cleanUpFiles = nil
}

func newSession(region string) (*session.Session, error) {
	if region == "" {
		return session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		})
	}
	return session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
}

func getFileExtension(p string) (string, error) {
	slash := strings.LastIndex(p, "/")
	pos := strings.LastIndex(p, ".")
	if pos == -1 || pos < slash || pos == len(p)-1 {
		return "", fmt.Errorf("couldn't find a period to indicate a file extension")
	}
	return p[pos+1:], nil
}
