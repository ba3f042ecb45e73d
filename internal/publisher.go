package internal

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"github.com/nocturnecity/density-resizer/pkg"
)

const pngContentType = "image/png"

// Publisher uploads written outputs to an S3 bucket under an optional prefix.
type Publisher struct {
	opt      pkg.PublishOptions
	log      *StdLog
	uploader s3manageriface.UploaderAPI
	once     sync.Once
	initErr  error
}

func NewPublisher(opt pkg.PublishOptions, log *StdLog, uploader s3manageriface.UploaderAPI) *Publisher {
	return &Publisher{
		opt:      opt,
		log:      log,
		uploader: uploader,
	}
}

// Key returns the object key for an output file name.
func (p *Publisher) Key(fileName string) string {
	if p.opt.Prefix == "" {
		return fileName
	}
	return path.Join(p.opt.Prefix, fileName)
}

// client returns the uploader, creating the S3 session on first use. Workers
// publish concurrently, so creation happens exactly once.
func (p *Publisher) client() (s3manageriface.UploaderAPI, error) {
	p.once.Do(func() {
		if p.uploader != nil {
			return
		}
		sess, err := newSession(p.opt.Region)
		if err != nil {
			p.initErr = fmt.Errorf("%w: failed to create session: %v", ErrPublish, err)
			return
		}
		p.uploader = s3manager.NewUploader(sess)
	})
	return p.uploader, p.initErr
}

func (p *Publisher) Publish(ctx context.Context, filename string, d pkg.Density) (string, error) {
	uploader, err := p.client()
	if err != nil {
		return "", err
	}

	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open file %q: %v", ErrPublish, filename, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			p.log.Error("error closing published file: %v", err)
		}
	}()

	key := p.Key(d.FileName())
	_, err = uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.opt.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(pngContentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload %s: %v", ErrPublish, key, err)
	}

	p.log.Debug("Put file to S3 s3://%s/%s", p.opt.BucketName, key)
	return key, nil
}
