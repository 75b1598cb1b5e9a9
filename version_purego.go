//go:build darwin || linux

// Native FFmpeg library introspection via purego. The processing paths
// run the ffmpeg/ffprobe binaries; these bindings only read version and
// build information straight from the libav* shared libraries when they
// are installed, without cgo.

package ezffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	libavOnce    sync.Once
	libavInitErr error

	avutilVersion        func() uint32
	avcodecVersion       func() uint32
	avformatVersion      func() uint32
	avcodecConfiguration func() uintptr
)

// LibraryVersions reports the versions of the installed libav* libraries.
type LibraryVersions struct {
	AVUtil   string
	AVCodec  string
	AVFormat string
	// Configuration is FFmpeg's build configuration line (--enable-... flags).
	Configuration string
}

// NativeLibraryVersions loads the libav* shared libraries and returns
// their versions. Returns ErrNotSupported wrapped with the loader error
// when the libraries are not installed.
func NativeLibraryVersions() (*LibraryVersions, error) {
	if err := loadLibav(); err != nil {
		return nil, err
	}
	return &LibraryVersions{
		AVUtil:        formatAVVersion(avutilVersion()),
		AVCodec:       formatAVVersion(avcodecVersion()),
		AVFormat:      formatAVVersion(avformatVersion()),
		Configuration: goStringFromPtr(avcodecConfiguration()),
	}, nil
}

// formatAVVersion unpacks FFmpeg's AV_VERSION_INT encoding
// (major<<16 | minor<<8 | micro).
func formatAVVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xFF, v&0xFF)
}

func loadLibav() error {
	libavOnce.Do(func() {
		libavInitErr = loadLibavLibs()
	})
	return libavInitErr
}

func loadLibavLibs() error {
	utilHandle, err := dlopenFirst(libavPaths("libavutil"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}
	codecHandle, err := dlopenFirst(libavPaths("libavcodec"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}
	formatHandle, err := dlopenFirst(libavPaths("libavformat"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}

	purego.RegisterLibFunc(&avutilVersion, utilHandle, "avutil_version")
	purego.RegisterLibFunc(&avcodecVersion, codecHandle, "avcodec_version")
	purego.RegisterLibFunc(&avformatVersion, formatHandle, "avformat_version")
	purego.RegisterLibFunc(&avcodecConfiguration, codecHandle, "avcodec_configuration")
	return nil
}

func dlopenFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return 0, errors.New("library not found in any standard location")
}

// libavPaths lists candidate locations for one libav* library, most
// specific first.
func libavPaths(name string) []string {
	ext := ".so"
	if runtime.GOOS == "darwin" {
		ext = ".dylib"
	}
	libName := name + ext

	var paths []string
	if envPath := os.Getenv("FFMPEG_LIB_PATH"); envPath != "" {
		paths = append(paths, filepath.Join(envPath, libName))
	}

	paths = append(paths, libName)
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"/usr/local/lib/"+libName,
			"/opt/homebrew/lib/"+libName,
		)
	case "linux":
		paths = append(paths,
			"/usr/local/lib/"+libName,
			"/usr/lib/"+libName,
			"/usr/lib/x86_64-linux-gnu/"+libName,
			"/usr/lib/aarch64-linux-gnu/"+libName,
		)
	}
	return paths
}

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := *(*unsafe.Pointer)(unsafe.Pointer(&ptr))
	var length int
	for *(*byte)(unsafe.Add(p, length)) != 0 {
		length++
		if length > 4096 { // configuration lines are long but bounded
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}
