// Package ezffmpeg wraps the FFmpeg multimedia framework behind a
// context/builder/scheduler API for media file processing in Go.
//
// Key pieces include:
//   - Context/Builder: describe a processing job (inputs, filter
//     description, outputs, limits such as a maximum output frame count)
//   - Scheduler: run the job, block for completion, pause/resume/abort,
//     and report progress
//   - FramePipeline/FrameFilter: insert custom Go frame processing between
//     decode and encode
//   - Probing: container format, duration, metadata, and stream layout
//
// # Architecture
//
//	Build:    NewContext().Input(...).FilterDesc(...).Output(...).Build()
//	Run:      NewScheduler(ctx).Start(...) then Wait()
//	Filters:  decode process -> Go FrameFilter chain -> encode process
//
// Container and stream semantics are owned by FFmpeg: an output ending in
// ".aac" keeps only audio, ".jpg" produces an image, and filter
// descriptions use FFmpeg's own filter syntax. The package plans the
// invocation and supervises it; it does not reimplement codecs or muxers.
//
// # Native Libraries
//
// Jobs execute through the ffmpeg and ffprobe binaries found on PATH (or
// overridden per context). When the libav* shared libraries are present
// they are additionally loaded via purego for version and
// build-configuration introspection; their absence is not an error.
package ezffmpeg
