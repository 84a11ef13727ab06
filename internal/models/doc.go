// Package models manages local model weights: the per-user storage layout,
// the download catalog, and a cooperatively cancellable acquisition task
// with a polled progress snapshot.
package models
