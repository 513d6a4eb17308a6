package zippyshare

import (
	"fmt"
	"regexp"

	"zippyfetch/internal"
)

var fileURLPattern = regexp.MustCompile(`^https://www(\d+)\.zippyshare\.com/v/([0-9A-Za-z]+)/file\.html$`)

// File identifies a stored file by the numbered server that holds it and
// its id on that server. The zero value is not a valid file; use ParseFile.
type File struct {
	serverID string
	fileID   string
}

// ParseFile parses a canonical file URL such as
// https://www114.zippyshare.com/v/UfqlE33b/file.html
func ParseFile(rawURL string) (File, error) {
	m := fileURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return File{}, internal.NewUnrecognizedFormatError(rawURL)
	}
	return File{serverID: m[1], fileID: m[2]}, nil
}

// ServerID returns the decimal server number
func (f File) ServerID() string {
	return f.serverID
}

// FileID returns the alphanumeric file id
func (f File) FileID() string {
	return f.fileID
}

// IsZero reports whether f was not produced by ParseFile
func (f File) IsZero() bool {
	return f.serverID == "" && f.fileID == ""
}

// String returns the canonical landing page URL
func (f File) String() string {
	return fmt.Sprintf("https://www%s.zippyshare.com/v/%s/file.html", f.serverID, f.fileID)
}

// DownloadURL returns the direct link unlocked by token
func (f File) DownloadURL(token int64, filename string) string {
	return fmt.Sprintf("https://www%s.zippyshare.com/d/%s/%d/%s", f.serverID, f.fileID, token, filename)
}

func serverURL(serverID, path string) string {
	return fmt.Sprintf("https://www%s.zippyshare.com%s", serverID, path)
}
