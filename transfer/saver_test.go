package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zippyfetch/internal"
)

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func newStream(name, content string, size int64) (*internal.RemoteStream, *trackingCloser) {
	body := &trackingCloser{Reader: strings.NewReader(content)}
	return &internal.RemoteStream{ReadCloser: body, Filename: name, Size: size}, body
}

func TestSaver_ResolveOutputPath(t *testing.T) {
	saver := NewSaver()
	dir := t.TempDir()

	tests := []struct {
		name    string
		output  string
		remote  string
		want    string
		wantErr bool
	}{
		{"default", "", "a.png", "a.png", false},
		{"existing dir", dir, "a.png", filepath.Join(dir, "a.png"), false},
		{"trailing slash", "downloads/", "a.png", filepath.Join("downloads", "a.png"), false},
		{"explicit file", filepath.Join(dir, "b.png"), "a.png", filepath.Join(dir, "b.png"), false},
		{"hostile name", "", "../../x.png", "x.png", false},
		{"unusable name", "", "..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := saver.ResolveOutputPath(tt.output, tt.remote)
			if tt.wantErr {
				assert.True(t, internal.IsErrorType(err, internal.ErrFileSystem))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaver_Save(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sub", "file.bin")
	stream, body := newStream("remote.bin", "payload bytes", 13)

	summary, err := NewSaver().Save(context.Background(), stream, &internal.TransferConfig{OutputPath: out, Quiet: true})
	require.NoError(t, err)

	assert.True(t, body.closed)
	assert.Equal(t, out, summary.Filename)
	assert.Equal(t, int64(13), summary.TotalBytes)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(data))
	assert.NoFileExists(t, out+".part")
}

func TestSaver_UnknownSize(t *testing.T) {
	out := filepath.Join(t.TempDir(), "file.bin")
	stream, _ := newStream("remote.bin", "abc", -1)

	_, err := NewSaver().Save(context.Background(), stream, &internal.TransferConfig{OutputPath: out, Quiet: true})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestSaver_RefusesOverwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(out, []byte("keep"), 0644))

	stream, body := newStream("remote.bin", "new", 3)
	_, err := NewSaver().Save(context.Background(), stream, &internal.TransferConfig{OutputPath: out, Quiet: true})
	assert.True(t, internal.IsErrorType(err, internal.ErrFileSystem))
	assert.True(t, body.closed)

	data, _ := os.ReadFile(out)
	assert.Equal(t, "keep", string(data))

	stream, _ = newStream("remote.bin", "new", 3)
	_, err = NewSaver().Save(context.Background(), stream, &internal.TransferConfig{OutputPath: out, Quiet: true, Overwrite: true})
	require.NoError(t, err)
	data, _ = os.ReadFile(out)
	assert.Equal(t, "new", string(data))
}

func TestSaver_ShortBodyRemovesPart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "file.bin")
	stream, _ := newStream("remote.bin", "abc", 10)

	_, err := NewSaver().Save(context.Background(), stream, &internal.TransferConfig{OutputPath: out, Quiet: true})
	assert.True(t, internal.IsErrorType(err, internal.ErrTransport))
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+".part")
}

func TestSaver_Cancelled(t *testing.T) {
	out := filepath.Join(t.TempDir(), "file.bin")
	stream, _ := newStream("remote.bin", "abc", 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSaver().Save(ctx, stream, &internal.TransferConfig{OutputPath: out, Quiet: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, out+".part")
}
