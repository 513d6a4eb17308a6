package zippyshare

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"zippyfetch/internal"
)

// UploadSetting holds per-upload options
type UploadSetting struct {
	Private bool
}

// DownloadSetting holds per-download options. There are none yet.
type DownloadSetting struct{}

// Host is the zippyshare implementation of internal.FileHost. It is
// immutable and safe for concurrent use.
type Host struct {
	client     Doer
	credential Credential
}

var _ internal.FileHost[File, UploadSetting, DownloadSetting] = (*Host)(nil)

// NewHost creates a host that sends requests through client on behalf of
// credential. Pass EmptyCredential() for download-only use.
func NewHost(client Doer, credential Credential) *Host {
	return &Host{client: client, credential: credential}
}

// Login authenticates and returns a host bound to the new session
func Login(ctx context.Context, client Doer, username, password string) (*Host, error) {
	credential, err := NewAuthenticator(client).Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return NewHost(client, credential), nil
}

// Credential returns the session the host acts for
func (h *Host) Credential() Credential {
	return h.credential
}

// MaxFileSize returns the upload size limit in bytes
func (h *Host) MaxFileSize() int64 {
	return MaxFileSize
}

// Upload stores r under name. size is -1 when unknown.
func (h *Host) Upload(ctx context.Context, name string, r io.Reader, size int64, setting UploadSetting) (File, error) {
	opID := uuid.NewString()
	start := time.Now()
	internal.LogDebug("[%s] upload %q started (private=%t)", opID, name, setting.Private)

	file, err := Upload(ctx, h.client, h.credential, name, r, size, setting.Private)
	if err != nil {
		internal.LogDebug("[%s] upload failed after %v: %v", opID, time.Since(start).Round(time.Millisecond), err)
		return File{}, err
	}

	internal.LogInfo("[%s] uploaded %q as %s", opID, name, file)
	return file, nil
}

// Download opens the content of file
func (h *Host) Download(ctx context.Context, file File, _ DownloadSetting) (*internal.RemoteStream, error) {
	opID := uuid.NewString()
	internal.LogDebug("[%s] download %s started", opID, file)

	stream, err := Download(ctx, h.client, file)
	if err != nil {
		internal.LogDebug("[%s] download failed: %v", opID, err)
		return nil, err
	}

	internal.LogInfo("[%s] downloading %s (%d bytes)", opID, stream.Filename, stream.Size)
	return stream, nil
}
