package zippyshare

import (
	"context"
	"io"
	"net/http"

	"zippyfetch/internal"
	"zippyfetch/utils"
)

// MaxFileSize is the largest upload the site accepts, in bytes
const MaxFileSize int64 = 500 * 1000 * 1000

const (
	boundaryLength   = 16
	boundaryAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"
)

// Upload streams content to an upload server and returns the stored file.
// size is -1 when unknown; a known size above MaxFileSize is rejected before
// any request is made.
func Upload(ctx context.Context, client Doer, cred Credential, name string, content io.Reader, size int64, private bool) (File, error) {
	if cred.IsEmpty() {
		return File{}, internal.NewHostError(internal.ErrAuthRequired, "upload requires a logged-in session").
			WithStep("upload")
	}
	if content == nil {
		return File{}, internal.NewValidationError("content", "upload content is nil")
	}
	if size > MaxFileSize {
		return File{}, internal.NewTooLargeError(size, MaxFileSize).WithStep("upload")
	}

	req, err := newRequest(ctx, "server lookup", http.MethodPost, siteURL, nil)
	if err != nil {
		return File{}, err
	}
	resp, err := send(client, "server lookup", req)
	if err != nil {
		return File{}, err
	}
	home, err := readPage("server lookup", resp)
	if err != nil {
		return File{}, err
	}
	serverID, err := ServerIDFromHomePage(home)
	if err != nil {
		return File{}, internal.NewScrapeFailedError("server lookup", err)
	}

	boundary, err := utils.GenerateBoundary(boundaryLength, boundaryAlphabet)
	if err != nil {
		return File{}, err
	}

	visibility := "notprivate"
	if private {
		visibility = "private"
	}
	body := utils.NewMultipart(utils.TextField("name", name)).
		Chain(utils.FileField("file", name, content, size)).
		Chain(utils.TextField(visibility, "true")).
		Chain(utils.TextField("ziphash", cred.Hash())).
		Chain(utils.TextField("zipname", cred.Name()))

	uploadURL := serverURL(serverID, "/upload")
	req, err = newRequest(ctx, "upload", http.MethodPost, uploadURL, body.Reader(boundary))
	if err != nil {
		return File{}, err
	}
	req.Header.Set("Content-Type", body.ContentType(boundary))
	if n, ok := body.Len(boundary); ok {
		req.ContentLength = n
	}

	internal.LogDebug("Uploading %s to server %s (%s)", name, serverID, utils.FormatBytes(size))

	resp, err = send(client, "upload", req)
	if err != nil {
		return File{}, err
	}
	page, err := readPage("upload", resp)
	if err != nil {
		return File{}, err
	}

	resultURL, err := ResultURLFromUploadResponse(page)
	if err != nil {
		return File{}, internal.NewScrapeFailedError("upload", err)
	}
	file, err := ParseFile(resultURL)
	if err != nil {
		return File{}, internal.NewScrapeFailedError("upload", err)
	}
	return file, nil
}
