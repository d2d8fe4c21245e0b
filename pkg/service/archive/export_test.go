package archive

import (
	"context"
	"io"
)

// NewWithOpener builds an archiver on a custom object writer
func NewWithOpener(bucket string, open func(ctx context.Context, object string) io.WriteCloser, opts ...Option) *GCSArchiver {
	a := &GCSArchiver{
		bucket: bucket,
		prefix: "sla-executions",
		open:   open,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
