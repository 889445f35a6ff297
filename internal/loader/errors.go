package loader

import "errors"

var (
	// ErrUnknownCodec is returned for file names without a known extension.
	ErrUnknownCodec = errors.New("loader: unknown graph file extension")
	// ErrEmptyGraph is returned when a document holds no nodes.
	ErrEmptyGraph = errors.New("loader: graph has no nodes")
	// ErrNotFound is returned when a remote graph object does not exist.
	ErrNotFound = errors.New("loader: graph object not found")
	// ErrMissingSource is returned when no source is configured.
	ErrMissingSource = errors.New("loader: no graph source configured")
)
