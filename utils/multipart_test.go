package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zippyfetch/internal"
)

type explodingReader struct{}

func (explodingReader) Read([]byte) (int, error) {
	return 0, errors.New("source read before it was reached")
}

func TestMultipart_SingleTextField(t *testing.T) {
	body := NewMultipart(TextField("name", "x"))

	got, err := io.ReadAll(body.Reader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "--abc\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nx\r\n--abc--", string(got))
}

func TestMultipart_FieldOrderAndFileLayout(t *testing.T) {
	body := NewMultipart(TextField("name", "a.txt")).
		Chain(FileField("file", "a.txt", strings.NewReader("hello"), 5)).
		Chain(TextField("private", "true"))

	got, err := io.ReadAll(body.Reader("B"))
	require.NoError(t, err)

	want := "--B\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\na.txt\r\n" +
		"--B\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n\r\nhello\r\n" +
		"--B\r\nContent-Disposition: form-data; name=\"private\"\r\n\r\ntrue\r\n" +
		"--B--"
	assert.Equal(t, want, string(got))

	names := make([]string, 0, 3)
	for _, f := range body.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"name", "file", "private"}, names)
}

func TestMultipart_EmptyBody(t *testing.T) {
	got, err := io.ReadAll(NewMultipart().Reader("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "--xyz--", string(got))
}

func TestMultipart_SourcePulledLazily(t *testing.T) {
	body := NewMultipart(TextField("name", "v")).
		Chain(FileField("file", "f.bin", explodingReader{}, -1))

	r := body.Reader("bnd")
	first := TextField("name", "v").header("bnd") + FileField("file", "f.bin", nil, 0).header("bnd")

	buf := make([]byte, len(first))
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, first, string(buf))

	_, err = io.ReadAll(r)
	require.Error(t, err)
}

func TestMultipart_StreamsLargeSourceVerbatim(t *testing.T) {
	payload := strings.Repeat("0123456789", 100000)
	body := NewMultipart(FileField("file", "big.bin", strings.NewReader(payload), int64(len(payload))))

	got, err := io.ReadAll(body.Reader("q"))
	require.NoError(t, err)

	prefix := "--q\r\nContent-Disposition: form-data; name=\"file\"; filename=\"big.bin\"\r\n\r\n"
	require.True(t, strings.HasPrefix(string(got), prefix))
	assert.Equal(t, payload, string(got[len(prefix):len(got)-len("\r\n--q--")]))
	assert.True(t, strings.HasSuffix(string(got), "\r\n--q--"))
}

func TestMultipart_Len(t *testing.T) {
	t.Run("known sizes", func(t *testing.T) {
		body := NewMultipart(TextField("name", "a.txt")).
			Chain(FileField("file", "a.txt", strings.NewReader("hello"), 5)).
			Chain(TextField("zipname", "alice"))

		n, ok := body.Len("0123456789abcdef")
		require.True(t, ok)

		encoded, err := io.ReadAll(body.Reader("0123456789abcdef"))
		require.NoError(t, err)
		assert.Equal(t, int64(len(encoded)), n)
	})

	t.Run("unknown size", func(t *testing.T) {
		body := NewMultipart(FileField("file", "a", strings.NewReader("x"), -1))
		_, ok := body.Len("b")
		assert.False(t, ok)
	})
}

func TestMultipart_QuotesEscapedInHeaders(t *testing.T) {
	body := NewMultipart(FileField("file", `say "hi"\now.txt`, strings.NewReader("x"), 1))

	got, err := io.ReadAll(body.Reader("B"))
	require.NoError(t, err)
	assert.Equal(t, "--B\r\nContent-Disposition: form-data; name=\"file\"; filename=\"say \\\"hi\\\"\\\\now.txt\"\r\n\r\nx\r\n--B--", string(got))

	n, ok := body.Len("B")
	require.True(t, ok)
	assert.Equal(t, int64(len(got)), n)

	form, err := multipart.NewReader(strings.NewReader(string(got)+"\r\n"), "B").ReadForm(1 << 10)
	require.NoError(t, err)
	require.Len(t, form.File["file"], 1)
	assert.Equal(t, `say "hi"\now.txt`, form.File["file"][0].Filename)
}

func TestMultipart_NilSourceFailsRead(t *testing.T) {
	body := NewMultipart(TextField("name", "a")).
		Chain(FileField("file", "a.txt", nil, 0))

	var got []byte
	assert.NotPanics(t, func() {
		var err error
		got, err = io.ReadAll(body.Reader("B"))
		var validationErr *internal.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "file", validationErr.Field)
	})
	assert.NotContains(t, string(got), "--B--")
}

func TestMultipart_ContentType(t *testing.T) {
	assert.Equal(t, "multipart/form-data; boundary=abc", NewMultipart().ContentType("abc"))
}

func TestGenerateBoundary(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"

	t.Run("length and alphabet", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			b, err := GenerateBoundary(16, alphabet)
			require.NoError(t, err)
			assert.Len(t, b, 16)
			for _, r := range b {
				assert.Contains(t, alphabet, string(r))
			}
		}
	})

	t.Run("zero length", func(t *testing.T) {
		b, err := GenerateBoundary(0, alphabet)
		require.NoError(t, err)
		assert.Equal(t, "", b)
	})

	t.Run("empty alphabet", func(t *testing.T) {
		_, err := GenerateBoundary(8, "")
		require.Error(t, err)
		assert.True(t, internal.IsErrorType(err, internal.ErrEmptyAlphabet))
	})

	t.Run("negative length", func(t *testing.T) {
		_, err := GenerateBoundary(-1, alphabet)
		var validationErr *internal.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("every symbol reachable", func(t *testing.T) {
		b, err := GenerateBoundary(2000, "ab")
		require.NoError(t, err)
		assert.Contains(t, b, "a")
		assert.Contains(t, b, "b")
	})

	t.Run("multibyte alphabet", func(t *testing.T) {
		b, err := GenerateBoundary(5, "é")
		require.NoError(t, err)
		assert.Equal(t, "ééééé", b)
	})
}
