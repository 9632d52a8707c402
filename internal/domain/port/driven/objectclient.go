package driven

import (
	"context"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// ObjectClient defines the driven port for the remote CRM object store.
// Implementations issue exactly one outbound call per method and never retry.
type ObjectClient interface {
	// ListObjects returns up to limit records of objectType, requesting exactly
	// the given properties. Failures are returned as *model.FetchError.
	ListObjects(ctx context.Context, objectType string, properties []string, limit int) (model.RecordList, error)

	// CreateObject creates one record of objectType with the given properties.
	// Failures are returned as *model.CreateError.
	CreateObject(ctx context.Context, objectType string, properties model.PropertySet) (model.Record, error)
}
