package application

import (
	"context"
	"errors"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

// RecordService mediates all reads and writes of the configured custom object,
// applying the configured property projection on both paths. It holds no
// mutable state and is safe for concurrent use.
type RecordService struct {
	client     driven.ObjectClient
	objectType string
	properties []string
}

// NewRecordService creates a RecordService for objectType. properties is copied;
// its order is the display and form order.
func NewRecordService(client driven.ObjectClient, objectType string, properties []string) *RecordService {
	props := make([]string, len(properties))
	copy(props, properties)

	return &RecordService{
		client:     client,
		objectType: objectType,
		properties: props,
	}
}

// ObjectType returns the configured object type identifier.
func (s *RecordService) ObjectType() string {
	return s.objectType
}

// Properties returns a copy of the configured property names in order.
func (s *RecordService) Properties() []string {
	out := make([]string, len(s.properties))
	copy(out, s.properties)
	return out
}

// ListRecords fetches one page of at most model.MaxPageSize records with exactly
// the configured properties. Every failure is a *model.FetchError.
func (s *RecordService) ListRecords(ctx context.Context) (model.RecordList, error) {
	records, err := s.client.ListObjects(ctx, s.objectType, s.properties, model.MaxPageSize)
	if err != nil {
		var fetchErr *model.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &model.FetchError{ObjectType: s.objectType, Err: err}
	}
	if records == nil {
		records = model.RecordList{}
	}
	return records, nil
}

// CreateRecord projects the submission onto the configured properties and
// creates one record with the result. Unknown keys are dropped and absent
// properties omitted. Every failure is a *model.CreateError.
func (s *RecordService) CreateRecord(ctx context.Context, sub model.Submission) (model.Record, error) {
	props := model.Project(s.properties, sub)

	record, err := s.client.CreateObject(ctx, s.objectType, props)
	if err != nil {
		var createErr *model.CreateError
		if errors.As(err, &createErr) {
			return model.Record{}, err
		}
		return model.Record{}, &model.CreateError{ObjectType: s.objectType, Err: err}
	}
	return record, nil
}
