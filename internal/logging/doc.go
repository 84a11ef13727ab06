// Package logging constructs the slog loggers used across crosstalk.
//
// Two formats are supported: a compact console format for interactive use
// and JSON for machine consumption. The console handler promotes the
// "component" attribute into a message prefix so log lines read as
// "component: message key=value".
package logging
