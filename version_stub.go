//go:build !darwin && !linux

package ezffmpeg

// LibraryVersions reports the versions of the installed libav* libraries.
type LibraryVersions struct {
	AVUtil   string
	AVCodec  string
	AVFormat string
	// Configuration is FFmpeg's build configuration line (--enable-... flags).
	Configuration string
}

// NativeLibraryVersions is unavailable without dlopen support.
func NativeLibraryVersions() (*LibraryVersions, error) {
	return nil, ErrNotSupported
}
