package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/atharv3903/navpath/internal/config"
	"github.com/atharv3903/navpath/internal/model"
)

// Source produces a fresh graph on every call.
type Source interface {
	Load(ctx context.Context) (*model.Graph, error)
}

// FileSource reads a local graph file; the codec follows the extension.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*model.Graph, error) {
	c, err := CodecFor(s.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := DecodeWith(c, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return g, nil
}

// WriteFile stores g at path using the codec its extension names.
func WriteFile(path string, g *model.Graph) error {
	c, err := CodecFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWith(c, f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewMinioClient connects to the S3-compatible endpoint in cfg.
func NewMinioClient(cfg config.S3Config) (*minio.Client, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
}

// BlobSource reads a graph object from MinIO or any S3-compatible store.
type BlobSource struct {
	Client *minio.Client
	Bucket string
	Key    string
}

func (s BlobSource) Load(ctx context.Context) (*model.Graph, error) {
	c, err := CodecFor(s.Key)
	if err != nil {
		return nil, err
	}

	obj, err := s.Client.GetObject(ctx, s.Bucket, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinio(err)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as a missing key surface on Stat.
	if _, err := obj.Stat(); err != nil {
		return nil, translateMinio(err)
	}

	g, err := DecodeWith(c, obj)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return g, nil
}

// Upload encodes g with the codec named by the key's extension and puts it.
func (s BlobSource) Upload(ctx context.Context, g *model.Graph) error {
	c, err := CodecFor(s.Key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeWith(c, &buf, g); err != nil {
		return err
	}

	_, err = s.Client.PutObject(ctx, s.Bucket, s.Key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{})
	return translateMinio(err)
}

func translateMinio(err error) error {
	if err == nil {
		return nil
	}
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" || errResp.Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", ErrNotFound, errResp.Message)
	}
	return err
}
