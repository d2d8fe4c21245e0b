package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// objectOpener returns a writer for a new object. Closing it commits the object.
type objectOpener func(ctx context.Context, object string) io.WriteCloser

// GCSArchiver stores finished SLA executions as JSON objects in a Cloud
// Storage bucket, one object per execution.
type GCSArchiver struct {
	bucket string
	prefix string
	open   objectOpener
}

type Option func(*GCSArchiver)

// WithPrefix sets the object name prefix. Default is "sla-executions".
func WithPrefix(prefix string) Option {
	return func(a *GCSArchiver) {
		a.prefix = prefix
	}
}

// New creates an archiver writing to bucket with the given storage client
func New(client *storage.Client, bucket string, opts ...Option) *GCSArchiver {
	a := &GCSArchiver{
		bucket: bucket,
		prefix: "sla-executions",
		open: func(ctx context.Context, object string) io.WriteCloser {
			w := client.Bucket(bucket).Object(object).NewWriter(ctx)
			w.ContentType = "application/json"
			return w
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ObjectName returns where an execution is stored: <prefix>/YYYY/MM/DD/<id>.json,
// dated by the execution instant in UTC
func (a *GCSArchiver) ObjectName(e *model.SLAExecution) string {
	at := e.ExecutedAt.UTC()
	return path.Join(a.prefix,
		fmt.Sprintf("%04d/%02d/%02d", at.Year(), at.Month(), at.Day()),
		string(e.ID)+".json")
}

// Archive uploads the execution. Errors are returned to the caller, which
// logs them; a failed upload never affects the sweep that produced it.
func (a *GCSArchiver) Archive(ctx context.Context, e *model.SLAExecution) error {
	object := a.ObjectName(e)

	raw, err := json.Marshal(e)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal sla execution", goerr.V(model.ExecutionIDKey, e.ID))
	}

	w := a.open(ctx, object)
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object",
			goerr.V("bucket", a.bucket), goerr.V("object", object))
	}
	// Close commits the upload, so its error matters
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit archive object",
			goerr.V("bucket", a.bucket), goerr.V("object", object))
	}

	logging.From(ctx).Info("SLA execution archived",
		"execution_id", e.ID,
		"bucket", a.bucket,
		"object", object)
	return nil
}
