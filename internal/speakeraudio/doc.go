// Package speakeraudio extracts one speaker's audio from a recording, either
// as a single concatenated track or as one clip per sentence.
package speakeraudio
