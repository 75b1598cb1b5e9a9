package ezffmpeg

import (
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Container format detection. FFmpeg itself picks demuxers and muxers
// from content and file extensions; these helpers expose the same
// decisions to callers that route files before building a job.

// FormatInfo describes a detected container format.
type FormatInfo struct {
	// Name is the FFmpeg demuxer/muxer name, e.g. "mp4", "matroska", "wav".
	// Empty when the content is not a known media format.
	Name string
	// MIME is the detected MIME type, e.g. "video/mp4".
	MIME string
	// Extension is the canonical file extension with leading dot, e.g. ".mp4".
	Extension string
}

// IsMedia reports whether the content was recognized as audio or video.
func (f FormatInfo) IsMedia() bool { return f.Name != "" }

// DetectFormat sniffs a container format from the first bytes of a file.
// 3 KB is enough for every format mimetype knows.
func DetectFormat(data []byte) FormatInfo {
	return formatFromMIME(mimetype.Detect(data))
}

// DetectFormatReader sniffs a container format from a reader. Only the
// header bytes are consumed; wrap the reader if it must be re-read.
func DetectFormatReader(r io.Reader) (FormatInfo, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return FormatInfo{}, err
	}
	return formatFromMIME(mt), nil
}

// DetectFormatFile sniffs a container format from a file on disk.
func DetectFormatFile(path string) (FormatInfo, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return FormatInfo{}, err
	}
	return formatFromMIME(mt), nil
}

func formatFromMIME(mt *mimetype.MIME) FormatInfo {
	info := FormatInfo{MIME: mt.String(), Extension: mt.Extension()}
	info.Name = muxerForExtension(mt.Extension())
	return info
}

// muxerByExtension maps file extensions to FFmpeg muxer names where the
// two differ; extensions not listed use the bare extension, which is how
// FFmpeg names most of its muxers.
var muxerByExtension = map[string]string{
	".mkv":  "matroska",
	".mka":  "matroska",
	".m4a":  "mp4",
	".m4v":  "mp4",
	".mov":  "mov",
	".ts":   "mpegts",
	".m2ts": "mpegts",
	".ogv":  "ogg",
	".oga":  "ogg",
	".opus": "ogg",
	".aac":  "adts",
	".jpg":  "image2",
	".jpeg": "image2",
	".png":  "image2",
	".webp": "image2",
	".3gp":  "3gp",
	".wma":  "asf",
	".wmv":  "asf",
}

// mediaExtensions lists extensions recognized as media containers, with
// the kinds of streams the container typically carries. An audio-only
// extension on an output means the job writes no video.
var mediaExtensions = map[string]MediaType{
	".mp4": MediaTypeVideo, ".mkv": MediaTypeVideo, ".mov": MediaTypeVideo,
	".webm": MediaTypeVideo, ".avi": MediaTypeVideo, ".ts": MediaTypeVideo,
	".m2ts": MediaTypeVideo, ".m4v": MediaTypeVideo, ".flv": MediaTypeVideo,
	".ogv": MediaTypeVideo, ".wmv": MediaTypeVideo, ".3gp": MediaTypeVideo,
	".jpg": MediaTypeVideo, ".jpeg": MediaTypeVideo, ".png": MediaTypeVideo,
	".webp": MediaTypeVideo,

	".aac": MediaTypeAudio, ".mp3": MediaTypeAudio, ".wav": MediaTypeAudio,
	".flac": MediaTypeAudio, ".m4a": MediaTypeAudio, ".oga": MediaTypeAudio,
	".opus": MediaTypeAudio, ".mka": MediaTypeAudio, ".wma": MediaTypeAudio,
	".ac3": MediaTypeAudio, ".amr": MediaTypeAudio,
}

func muxerForExtension(ext string) string {
	ext = strings.ToLower(ext)
	if _, known := mediaExtensions[ext]; !known {
		return ""
	}
	if name, ok := muxerByExtension[ext]; ok {
		return name
	}
	return strings.TrimPrefix(ext, ".")
}

// ExtensionMediaType classifies a target URL by its extension. Audio
// extensions such as ".aac" mean the output carries no video stream;
// FFmpeg applies the same rule when it picks the muxer.
func ExtensionMediaType(url string) MediaType {
	ext := strings.ToLower(path.Ext(url))
	if t, ok := mediaExtensions[ext]; ok {
		return t
	}
	return MediaTypeUnknown
}

// MuxerForTarget returns the FFmpeg muxer name a target URL's extension
// implies, or "" when the extension is not a known media format.
func MuxerForTarget(url string) string {
	return muxerForExtension(path.Ext(url))
}
