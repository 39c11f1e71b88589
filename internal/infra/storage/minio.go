package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// Config MinIO source archive
type Config struct {
	Endpoint   string
	Region     string
	BucketName string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
}

// Archive serves contract sources stored as one object per contract.
// Objects are laid out as {network}/{address}.sol with a lower-case address.
type Archive struct {
	client     *minio.Client
	bucketName string
}

// New buat koneksi MinIO. The bucket is only read, never created.
func New(cfg Config) (*Archive, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:     cfg.UseSSL,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "minio: new client")
	}
	return &Archive{client: cli, bucketName: cfg.BucketName}, nil
}

// SourceKey is the object key of a contract's source.
func SourceKey(address string, network contracts.Network) string {
	return fmt.Sprintf("%s/%s.sol", network, strings.ToLower(strings.TrimSpace(address)))
}

// FetchSource implements contracts.SourceFetcher. A missing object is an
// absent source.
func (a *Archive) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	key := SourceKey(address, network)
	obj, err := a.client.GetObject(ctx, a.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return "", eris.Wrapf(err, "minio: get %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", eris.Wrapf(err, "minio: read %s", key)
	}
	return string(data), nil
}

// Check verifies the archive bucket is reachable.
func (a *Archive) Check(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return eris.Wrap(err, "minio: bucket exists")
	}
	if !exists {
		return eris.Errorf("minio: bucket %q not found", a.bucketName)
	}
	return nil
}

// isNotFound matches a missing object only; a missing bucket or a wrong
// endpoint is a failure.
func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
