package internal

import "io"

// RemoteStream is the body of a resolved download. The caller owns it and
// must Close it.
type RemoteStream struct {
	io.ReadCloser
	Filename string
	Size     int64 // -1 when the server sent no length
}

// TransferConfig contains configuration for saving a download or sending an upload
type TransferConfig struct {
	OutputPath string
	RateLimit  int64 // bytes per second, 0 means unlimited
	Quiet      bool
	Overwrite  bool
}
