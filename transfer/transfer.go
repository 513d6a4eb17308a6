package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"zippyfetch/internal"
	"zippyfetch/utils"
)

// Source is a local file opened for upload
type Source struct {
	*os.File
	Name string
	Size int64
}

// OpenSource opens path for upload and records its base name and size
func OpenSource(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, internal.WrapHostError(internal.ErrFileSystem, "cannot read upload source", err)
	}
	if !info.Mode().IsRegular() {
		return nil, internal.NewHostError(internal.ErrFileSystem, fmt.Sprintf("%s is not a regular file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, internal.WrapHostError(internal.ErrFileSystem, "cannot open upload source", err)
	}

	return &Source{File: file, Name: filepath.Base(path), Size: info.Size()}, nil
}

// UploadFile sends the file at path to host with progress display and the
// configured bandwidth limit
func UploadFile[F, U, D any](ctx context.Context, host internal.FileHost[F, U, D], path string, setting U, config *internal.TransferConfig) (F, error) {
	var zero F
	if config == nil {
		config = &internal.TransferConfig{}
	}

	src, err := OpenSource(path)
	if err != nil {
		return zero, err
	}
	defer src.Close()

	if limit := host.MaxFileSize(); src.Size > limit {
		return zero, internal.NewTooLargeError(src.Size, limit).WithStep("upload")
	}

	var limiter internal.RateLimiter
	if config.RateLimit > 0 {
		limiter = utils.NewTokenBucketLimiter(config.RateLimit)
	}

	tracker := utils.NewProgressTracker(src.Size, "Uploading", config.Quiet)
	reader := tracker.Wrap(utils.NewThrottledReader(ctx, src, limiter))

	file, err := host.Upload(ctx, src.Name, reader, src.Size, setting)
	tracker.Finish()
	if err != nil {
		return zero, err
	}
	return file, nil
}

// DownloadFile fetches file from host and saves it as configured. It returns
// the path written.
func DownloadFile[F, U, D any](ctx context.Context, host internal.FileHost[F, U, D], file F, setting D, config *internal.TransferConfig) (string, error) {
	stream, err := host.Download(ctx, file, setting)
	if err != nil {
		return "", err
	}

	summary, err := NewSaver().Save(ctx, stream, config)
	if err != nil {
		return "", err
	}
	return summary.Filename, nil
}
