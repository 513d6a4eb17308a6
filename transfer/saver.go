package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"zippyfetch/internal"
	"zippyfetch/utils"
)

// Saver writes remote streams to disk through a .part file that is renamed
// into place once the copy completes
type Saver struct {
	fileOps *utils.FileOperations
}

// NewSaver creates a new Saver
func NewSaver() *Saver {
	return &Saver{fileOps: utils.NewFileOperations()}
}

// ResolveOutputPath picks the destination for a download. An empty output
// uses the remote name in the working directory; a directory output places
// the remote name inside it.
func (s *Saver) ResolveOutputPath(output, remoteName string) (string, error) {
	name, err := utils.SanitizeFilename(remoteName)
	if err != nil {
		return "", internal.WrapHostError(internal.ErrFileSystem, "cannot derive output filename", err)
	}

	if output == "" {
		return name, nil
	}
	if strings.HasSuffix(output, string(filepath.Separator)) || strings.HasSuffix(output, "/") {
		return filepath.Join(output, name), nil
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name), nil
	}
	return output, nil
}

// Save copies stream to disk and closes it. It returns the transfer summary
// with Filename set to the final path.
func (s *Saver) Save(ctx context.Context, stream *internal.RemoteStream, config *internal.TransferConfig) (summary *utils.TransferSummary, err error) {
	defer stream.Close()

	if config == nil {
		config = &internal.TransferConfig{}
	}

	outputPath, err := s.ResolveOutputPath(config.OutputPath, stream.Filename)
	if err != nil {
		return nil, err
	}

	if s.fileOps.FileExists(outputPath) && !config.Overwrite {
		return nil, internal.NewHostError(internal.ErrFileSystem, fmt.Sprintf("%s already exists", outputPath)).
			WithSuggestion("Remove the file, choose another --output, or pass --force")
	}

	if err := s.fileOps.EnsureDir(outputPath); err != nil {
		return nil, internal.WrapHostError(internal.ErrFileSystem, "failed to create output directory", err)
	}

	if exists, size, _ := s.fileOps.DetectPartialDownload(outputPath); exists {
		internal.LogWarn("Discarding stale partial download (%s)", utils.FormatBytes(size))
	}

	partPath := s.fileOps.PartPath(outputPath)
	file, err := s.fileOps.CreatePartialFile(partPath)
	if err != nil {
		return nil, internal.WrapHostError(internal.ErrFileSystem, "failed to create part file", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			s.fileOps.RemovePartial(partPath)
		}
	}()

	var limiter internal.RateLimiter
	if config.RateLimit > 0 {
		limiter = utils.NewTokenBucketLimiter(config.RateLimit)
	}

	tracker := utils.NewProgressTracker(stream.Size, "Downloading", config.Quiet)
	src := tracker.Wrap(utils.NewThrottledReader(ctx, stream, limiter))

	written, err := copyWithContext(ctx, file, src)
	if err != nil {
		tracker.Finish()
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, internal.WrapHostError(internal.ErrFileSystem, "failed to write part file", err)
		}
		return nil, internal.NewTransportError("download", 0, err)
	}

	if stream.Size >= 0 && written != stream.Size {
		tracker.Finish()
		return nil, internal.NewTransportError("download", 0,
			fmt.Errorf("size mismatch: expected %d bytes, got %d bytes", stream.Size, written))
	}

	if err = file.Close(); err != nil {
		tracker.Finish()
		return nil, internal.WrapHostError(internal.ErrFileSystem, "failed to close part file", err)
	}

	if err = s.fileOps.AtomicRename(partPath, outputPath); err != nil {
		tracker.Finish()
		return nil, internal.WrapHostError(internal.ErrFileSystem, "failed to move download into place", err)
	}

	tracker.SetFilename(outputPath)
	return tracker.Finish(), nil
}

// copyWithContext copies src to dst, stopping between chunks once ctx is done
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buffer := make([]byte, 32*1024)
	var totalWritten int64

	for {
		select {
		case <-ctx.Done():
			return totalWritten, ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			written, writeErr := dst.Write(buffer[:n])
			totalWritten += int64(written)
			if writeErr != nil {
				return totalWritten, writeErr
			}
			if written != n {
				return totalWritten, io.ErrShortWrite
			}
		}

		if err != nil {
			if err == io.EOF {
				return totalWritten, nil
			}
			return totalWritten, err
		}
	}
}
