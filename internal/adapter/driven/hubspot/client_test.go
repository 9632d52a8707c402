package hubspot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cobjpanel/internal/adapter/driven/hubspot"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *hubspot.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := hubspot.NewClientWithHTTPClient(server.Client(), server.URL+"/", "test-token")
	require.NoError(t, err)
	return client
}

func TestListObjects_RequestShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/objects/p243994756_pet", r.URL.Path)
		assert.Equal(t, "name,species,bio", r.URL.Query().Get("properties"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"results": [
				{"id": "101", "properties": {"name": "Rex", "species": "Dog", "bio": null}, "createdAt": "2024-05-01T10:00:00Z", "updatedAt": "2024-05-02T10:00:00Z", "archived": false},
				{"id": "102", "properties": {"name": "Tom", "species": "Cat", "bio": "Sleeps a lot"}}
			],
			"paging": {"next": {"after": "102"}}
		}`)
	})

	records, err := client.ListObjects(context.Background(), "p243994756_pet", []string{"name", "species", "bio"}, 100)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "101", records[0].ID)
	assert.Equal(t, "Rex", records[0].Value("name"))
	assert.Equal(t, "", records[0].Value("bio"), "null properties map to empty")
	assert.Equal(t, 2024, records[0].CreatedAt.Year())
	assert.Equal(t, "Sleeps a lot", records[1].Value("bio"))
}

func TestListObjects_ClampsLimit(t *testing.T) {
	for _, limit := range []int{0, -5, 250} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"results": []}`)
		})

		_, err := client.ListObjects(context.Background(), "pets", []string{"name"}, limit)
		require.NoError(t, err)
	}
}

func TestListObjects_EmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"results": []}`)
	})

	records, err := client.ListObjects(context.Background(), "pets", []string{"name"}, 100)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListObjects_MissingResultsField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	records, err := client.ListObjects(context.Background(), "pets", []string{"name"}, 100)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListObjects_EmptyPropertyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		values, ok := r.URL.Query()["properties"]
		assert.True(t, ok, "properties param is still sent")
		assert.Equal(t, []string{""}, values)
		_, _ = io.WriteString(w, `{"results": []}`)
	})

	_, err := client.ListObjects(context.Background(), "pets", nil, 100)
	require.NoError(t, err)
}

func TestListObjects_EscapesObjectType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/2-123%2Fx", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"results": []}`)
	})

	_, err := client.ListObjects(context.Background(), "2-123/x", []string{"name"}, 100)
	require.NoError(t, err)
}

func TestListObjects_RemoteError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"error","message":"Authentication credentials not found.","correlationId":"abc-123","category":"INVALID_AUTHENTICATION"}`)
	})

	records, err := client.ListObjects(context.Background(), "pets", []string{"name"}, 100)
	require.Error(t, err)
	assert.Nil(t, records)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.NotNil(t, fetchErr.Remote)

	want := &model.RemoteError{
		StatusCode:    http.StatusUnauthorized,
		Status:        "error",
		Message:       "Authentication credentials not found.",
		Category:      "INVALID_AUTHENTICATION",
		CorrelationID: "abc-123",
	}
	if diff := cmp.Diff(want, fetchErr.Remote); diff != "" {
		t.Fatalf("remote error mismatch (-want +got):\n%s", diff)
	}
}

func TestListObjects_NonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.ListObjects(context.Background(), "pets", []string{"name"}, 100)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.NotNil(t, fetchErr.Remote)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Remote.StatusCode)
	assert.Empty(t, fetchErr.Remote.Message)
}

func TestListObjects_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := hubspot.NewClientWithHTTPClient(server.Client(), server.URL, "test-token")
	require.NoError(t, err)
	server.Close()

	_, err = client.ListObjects(context.Background(), "pets", []string{"name"}, 100)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Nil(t, fetchErr.Remote)
	assert.Error(t, fetchErr.Err)
}

func TestListObjects_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"results": [`)
	})

	_, err := client.ListObjects(context.Background(), "pets", []string{"name"}, 100)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, err.Error(), "decoding list response")
}

func TestCreateObject_SendsProjectedPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/pets", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"555","properties":{"name":"Rex","species":"Dog","hs_object_id":"555"},"createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z","archived":false}`)
	})

	props := model.Project([]string{"name", "species", "bio"}, model.Submission{"name": "Rex", "species": "Dog", "extra": "ignored"})
	record, err := client.CreateObject(context.Background(), "pets", props)
	require.NoError(t, err)

	want := map[string]any{"properties": map[string]any{"name": "Rex", "species": "Dog"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "555", record.ID)
	assert.Equal(t, "Rex", record.Value("name"))
}

func TestCreateObject_EmptyPropertiesObject(t *testing.T) {
	var raw []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"1","properties":{}}`)
	})

	_, err := client.CreateObject(context.Background(), "pets", model.NewPropertySet())
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{}}`, string(raw))
}

func TestCreateObject_ValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","message":"Property values were not valid","category":"VALIDATION_ERROR"}`)
	})

	_, err := client.CreateObject(context.Background(), "pets", model.NewPropertySet())
	require.Error(t, err)

	var createErr *model.CreateError
	require.True(t, errors.As(err, &createErr))
	require.NotNil(t, createErr.Remote)
	assert.Equal(t, http.StatusBadRequest, createErr.Remote.StatusCode)
	assert.Equal(t, "Property values were not valid", model.UserMessage(err))
}

func TestCreateObject_ServerErrorIsCreateError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateObject(context.Background(), "pets", model.NewPropertySet())

	var createErr *model.CreateError
	require.True(t, errors.As(err, &createErr))
	assert.Equal(t, 1, calls, "create is never retried")
}

func TestNewClientWithHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := hubspot.NewClientWithHTTPClient(http.DefaultClient, "api.hubapi.com", "token")
	assert.Error(t, err)
}

// fakeStore is an in-memory objects endpoint that marks list responses as
// cacheable and honours If-None-Match.
type fakeStore struct {
	mu       sync.Mutex
	records  []string
	gets     int
	revalidated int
}

func (f *fakeStore) etag() string {
	return fmt.Sprintf(`"v%d"`, len(f.records))
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		f.records = append(f.records, strconv.Itoa(len(f.records)+1))
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"id":%q,"properties":{}}`, f.records[len(f.records)-1])
	case http.MethodGet:
		f.gets++
		w.Header().Set("Cache-Control", "private, max-age=60")
		w.Header().Set("ETag", f.etag())
		if r.Header.Get("If-None-Match") == f.etag() {
			f.revalidated++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		results := make([]map[string]any, 0, len(f.records))
		for _, id := range f.records {
			results = append(results, map[string]any{"id": id, "properties": map[string]string{}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}
}

func TestNewClient_ListAfterCreateSeesNewRecord(t *testing.T) {
	store := &fakeStore{records: []string{"1"}}
	server := httptest.NewServer(store)
	t.Cleanup(server.Close)

	client, err := hubspot.NewClient(server.URL, "token")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := client.ListObjects(ctx, "pets", []string{"name"}, 100)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	_, err = client.CreateObject(ctx, "pets", model.NewPropertySet())
	require.NoError(t, err)

	second, err := client.ListObjects(ctx, "pets", []string{"name"}, 100)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 2, store.gets, "each list makes one outbound call")
}

func TestNewClient_UnchangedListRevalidatesWithETag(t *testing.T) {
	store := &fakeStore{records: []string{"1", "2"}}
	server := httptest.NewServer(store)
	t.Cleanup(server.Close)

	client, err := hubspot.NewClient(server.URL, "token")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.ListObjects(ctx, "pets", []string{"name"}, 100)
	require.NoError(t, err)

	again, err := client.ListObjects(ctx, "pets", []string{"name"}, 100)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, "2", again[1].ID)
	assert.Equal(t, 2, store.gets)
	assert.Equal(t, 1, store.revalidated, "second list is answered with 304 from the ETag")
}
