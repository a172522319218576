// Package storage keeps uploaded source files in Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/noshow/pkg/lifecycle"
)

// System stores and retrieves blobs within one container.
type System interface {
	// Start ensures the container exists once the lifecycle starts up.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the container is known to exist.
	Ready() bool
	// Upload writes r to key, replacing any blob already there.
	Upload(ctx context.Context, key string, r io.Reader, obj Object) error
	// Download opens the blob at key. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error
}

// Object carries the HTTP headers and metadata written with a blob.
// Filename becomes an attachment Content-Disposition.
type Object struct {
	ContentType string
	Filename    string
	Metadata    map[string]string
}

func (o Object) headers() *blob.HTTPHeaders {
	h := &blob.HTTPHeaders{}
	if o.ContentType != "" {
		h.BlobContentType = &o.ContentType
	}
	if o.Filename != "" {
		cd := mime.FormatMediaType("attachment", map[string]string{"filename": o.Filename})
		if cd != "" {
			h.BlobContentDisposition = &cd
		}
	}
	return h
}

func (o Object) metadata() map[string]*string {
	if len(o.Metadata) == 0 {
		return nil
	}
	out := make(map[string]*string, len(o.Metadata))
	for k, v := range o.Metadata {
		out[k] = &v
	}
	return out
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
	ready     atomic.Bool
}

// New creates a System from cfg. No request is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: int32(cfg.MaxRetries)},
			Telemetry: policy.TelemetryOptions{ApplicationID: "noshow"},
		},
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, opts)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage", "container", cfg.ContainerName),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("container unavailable", "error", err)
			return
		}
		a.ready.Store(true)
		a.logger.Info("container ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		a.ready.Store(false)
	})

	return nil
}

func (a *azure) Ready() bool {
	return a.ready.Load()
}

func (a *azure) Upload(ctx context.Context, key string, r io.Reader, obj Object) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: obj.headers(),
		Metadata:    obj.metadata(),
	}
	if _, err := a.client.UploadStream(ctx, a.container, key, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (a *azure) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		return nil, notFound(err, "download", key)
	}
	return resp.Body, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		return notFound(err, "delete", key)
	}
	return nil
}

func notFound(err error, op, key string) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}

// Key joins path segments into a storage key. Each segment is escaped so
// a user-supplied filename stays a single level.
func Key(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return strings.Join(escaped, "/")
}

// ValidateKey rejects empty keys, absolute keys, and keys with empty, "."
// or ".." segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsRune(key, '\\') {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		switch seg {
		case "", ".", "..":
			return ErrInvalidKey
		}
	}
	return nil
}
