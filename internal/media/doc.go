// Package media wraps the external ffmpeg and ffprobe tools: binary
// resolution, process execution with verbatim stderr capture, media
// inspection, and the conversion operations the CLI exposes.
package media
