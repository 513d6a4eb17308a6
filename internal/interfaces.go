package internal

import (
	"context"
	"io"
)

// FileHost is a file hosting service. F identifies a stored file, U and D
// carry per-call upload and download options.
type FileHost[F, U, D any] interface {
	// MaxFileSize is the largest upload the host accepts, in bytes.
	MaxFileSize() int64
	// Upload streams r to the host. size is -1 when unknown.
	Upload(ctx context.Context, name string, r io.Reader, size int64, setting U) (F, error)
	Download(ctx context.Context, file F, setting D) (*RemoteStream, error)
}

// RateLimiter controls bandwidth usage
type RateLimiter interface {
	Wait(ctx context.Context, n int) error
	SetRate(bytesPerSecond int64)
}
