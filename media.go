package ezffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaType identifies the kind of stream a frame or pipeline refers to.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeVideo
	MediaTypeAudio
	MediaTypeSubtitle
	MediaTypeData
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeData:
		return "data"
	default:
		return "unknown"
	}
}

// StreamSpecifier returns the FFmpeg stream specifier letter for this type
// ("v", "a", "s", "d"), or "" for unknown.
func (m MediaType) StreamSpecifier() string {
	switch m {
	case MediaTypeVideo:
		return "v"
	case MediaTypeAudio:
		return "a"
	case MediaTypeSubtitle:
		return "s"
	case MediaTypeData:
		return "d"
	default:
		return ""
	}
}

// LinkLabel returns the FFmpeg-style link label ("0:v", "1:a") for the
// first stream of this type in the given input.
func (m MediaType) LinkLabel(inputIndex int) string {
	spec := m.StreamSpecifier()
	if spec == "" {
		return ""
	}
	return fmt.Sprintf("%d:%s", inputIndex, spec)
}

// parseLinkLabel splits an FFmpeg-style link label such as "0:v" or
// "0:a:1" into input index, media type, and type-relative stream index.
// The index is -1 when the label names a whole type.
func parseLinkLabel(label string) (input int, mt MediaType, index int, err error) {
	parts := strings.Split(label, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, MediaTypeUnknown, 0, fmt.Errorf("malformed link label %q", label)
	}
	input, err = strconv.Atoi(parts[0])
	if err != nil || input < 0 {
		return 0, MediaTypeUnknown, 0, fmt.Errorf("malformed link label %q", label)
	}
	mt = mediaTypeFromSpecifier(parts[1])
	if mt == MediaTypeUnknown {
		return 0, MediaTypeUnknown, 0, fmt.Errorf("malformed link label %q", label)
	}
	index = -1
	if len(parts) == 3 {
		index, err = strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return 0, MediaTypeUnknown, 0, fmt.Errorf("malformed link label %q", label)
		}
	}
	return input, mt, index, nil
}

// mediaTypeFromSpecifier maps FFmpeg stream specifier letters.
func mediaTypeFromSpecifier(s string) MediaType {
	switch s {
	case "v":
		return MediaTypeVideo
	case "a":
		return MediaTypeAudio
	case "s":
		return MediaTypeSubtitle
	case "d":
		return MediaTypeData
	default:
		return MediaTypeUnknown
	}
}

// mediaTypeFromCodecType maps ffprobe's codec_type strings.
func mediaTypeFromCodecType(s string) MediaType {
	switch s {
	case "video":
		return MediaTypeVideo
	case "audio":
		return MediaTypeAudio
	case "subtitle":
		return MediaTypeSubtitle
	case "data", "attachment":
		return MediaTypeData
	default:
		return MediaTypeUnknown
	}
}
