package zippyshare

import (
	"context"
	"net/http"

	"zippyfetch/internal"
)

// Download resolves file's direct link and opens it. The returned stream is
// unread; the caller must close it.
func Download(ctx context.Context, client Doer, file File) (*internal.RemoteStream, error) {
	if file.IsZero() {
		return nil, internal.NewUnrecognizedFormatError("").WithStep("download")
	}

	req, err := newRequest(ctx, "file page", http.MethodGet, file.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := send(client, "file page", req)
	if err != nil {
		return nil, err
	}
	page, err := readPage("file page", resp)
	if err != nil {
		return nil, err
	}

	filename, err := FilenameFromFilePage(page)
	if err != nil {
		return nil, internal.NewScrapeFailedError("file page", err).WithURL(file.String())
	}
	challenge, err := ChallengeFromFilePage(page)
	if err != nil {
		return nil, internal.NewScrapeFailedError("file page", err).WithURL(file.String())
	}
	token, err := challenge.Token()
	if err != nil {
		return nil, internal.NewScrapeFailedError("file page", err).WithURL(file.String())
	}

	directURL := file.DownloadURL(token, filename)
	internal.LogDebug("Resolved %s to %s", file, directURL)

	req, err = newRequest(ctx, "download", http.MethodGet, directURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err = send(client, "download", req)
	if err != nil {
		return nil, err
	}

	return &internal.RemoteStream{
		ReadCloser: resp.Body,
		Filename:   filename,
		Size:       resp.ContentLength,
	}, nil
}
