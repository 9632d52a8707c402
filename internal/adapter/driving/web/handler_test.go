package web_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cobjpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// --- Mock implementations ---

type mockObjectClient struct {
	records   model.RecordList
	listErr   error
	createErr error

	createCalls int
	payload     model.PropertySet
}

func (m *mockObjectClient) ListObjects(_ context.Context, _ string, _ []string, _ int) (model.RecordList, error) {
	return m.records, m.listErr
}

func (m *mockObjectClient) CreateObject(_ context.Context, _ string, props model.PropertySet) (model.Record, error) {
	m.createCalls++
	m.payload = props
	if m.createErr != nil {
		return model.Record{}, m.createErr
	}
	return model.Record{ID: "900"}, nil
}

// --- Helpers ---

const testCSRF = "test-csrf-token"

func setupMux(t *testing.T, client *mockObjectClient, properties []string) *http.ServeMux {
	t.Helper()

	svc := application.NewRecordService(client, "pets", properties)
	h := web.NewHandler(svc, []string{"bio"}, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h)
	return mux
}

func postForm(t *testing.T, mux http.Handler, form url.Values, withCSRF bool) *httptest.ResponseRecorder {
	t.Helper()

	if withCSRF {
		form.Set("_csrf", testCSRF)
	}
	req := httptest.NewRequest(http.MethodPost, "/update-cobj", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if withCSRF {
		req.AddCookie(&http.Cookie{Name: "cobjpanel_csrf", Value: testCSRF})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHome_RendersRecords(t *testing.T) {
	client := &mockObjectClient{records: model.RecordList{
		{ID: "1", Properties: map[string]string{"name": "Rex", "species": "Dog", "bio": "**Good** boy"}},
		{ID: "2", Properties: map[string]string{"name": "Tom", "species": "Cat"}},
	}}
	mux := setupMux(t, client, []string{"name", "species", "bio"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Homepage | Integrating With HubSpot I Practicum</title>")
	assert.Contains(t, body, `data-property="species"`)
	assert.Contains(t, body, ">Species</th>")
	assert.Contains(t, body, `data-id="1"`)
	assert.Contains(t, body, "<td>Rex</td>")
	assert.Contains(t, body, "<strong>Good</strong> boy")
	assert.NotContains(t, body, "alert-error")
}

func TestHome_EmptyResults(t *testing.T) {
	mux := setupMux(t, &mockObjectClient{records: model.RecordList{}}, []string{"name"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data-id=")
	assert.NotContains(t, rec.Body.String(), "alert-error")
}

func TestHome_FetchErrorRendersBanner(t *testing.T) {
	client := &mockObjectClient{listErr: &model.FetchError{
		ObjectType: "pets",
		Remote:     &model.RemoteError{StatusCode: 401, Category: "INVALID_AUTHENTICATION"},
	}}
	mux := setupMux(t, client, []string{"name", "species"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alert-error")
	assert.Contains(t, body, "Failed to load records. Check token, HS_OBJECT, and scopes.")
	assert.Contains(t, body, ">Species</th>", "columns still render")
}

func TestRecordForm_RendersOneFieldPerProperty(t *testing.T) {
	mux := setupMux(t, &mockObjectClient{}, []string{"name", "species", "bio"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update-cobj", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="name" value=""`)
	assert.Contains(t, body, `name="species" value=""`)
	assert.Contains(t, body, `<textarea rows="4" id="field-bio" name="bio"></textarea>`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cobjpanel_csrf", cookies[0].Name)
	assert.Contains(t, body, `value="`+cookies[0].Value+`"`)
}

func TestCreateRecord_SuccessRedirects(t *testing.T) {
	client := &mockObjectClient{}
	mux := setupMux(t, client, []string{"name", "species", "bio"})

	rec := postForm(t, mux, url.Values{
		"name":    {"Rex"},
		"species": {"Dog"},
		"extra":   {"ignored"},
	}, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, map[string]string{"name": "Rex", "species": "Dog"}, client.payload.Map())
}

func TestCreateRecord_RemoteValidationError(t *testing.T) {
	client := &mockObjectClient{createErr: &model.CreateError{
		ObjectType: "pets",
		Remote:     &model.RemoteError{StatusCode: 400, Message: "Property values were not valid"},
	}}
	mux := setupMux(t, client, []string{"name", "species", "bio"})

	rec := postForm(t, mux, url.Values{"name": {"Rex"}, "species": {"Dragon"}}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Property values were not valid")
	assert.Contains(t, body, `name="name" value="Rex"`)
	assert.Contains(t, body, `name="species" value="Dragon"`)
	assert.Contains(t, body, `value="`+testCSRF+`"`)
}

func TestCreateRecord_TransportErrorUsesGenericMessage(t *testing.T) {
	client := &mockObjectClient{createErr: &model.CreateError{ObjectType: "pets", Err: context.DeadlineExceeded}}
	mux := setupMux(t, client, []string{"name"})

	rec := postForm(t, mux, url.Values{"name": {"Rex"}}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to create record. Verify property names and token scopes.")
}

func TestCreateRecord_MissingCSRFRejected(t *testing.T) {
	client := &mockObjectClient{}
	mux := setupMux(t, client, []string{"name"})

	rec := postForm(t, mux, url.Values{"name": {"Rex"}}, false)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, client.createCalls)

	body := rec.Body.String()
	assert.Contains(t, body, `name="name" value="Rex"`)
	assert.Contains(t, body, "Your form session expired.")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Contains(t, body, `name="_csrf" value="`+cookies[0].Value+`"`)
}

func TestCreateRecord_MismatchedCSRFReusesCookieToken(t *testing.T) {
	client := &mockObjectClient{}
	mux := setupMux(t, client, []string{"name"})

	form := url.Values{"name": {"Rex"}, "_csrf": {"forged"}}
	req := httptest.NewRequest(http.MethodPost, "/update-cobj", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "cobjpanel_csrf", Value: testCSRF})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, client.createCalls)
	assert.Contains(t, rec.Body.String(), `name="_csrf" value="`+testCSRF+`"`)
	assert.Empty(t, rec.Result().Cookies())
}

func TestCreateRecord_CSRFTokenNeverSentAsProperty(t *testing.T) {
	client := &mockObjectClient{}
	mux := setupMux(t, client, []string{"name", "csrf_token", "_csrf"})

	rec := postForm(t, mux, url.Values{"name": {"Rex"}, "csrf_token": {"mine"}}, true)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, map[string]string{"name": "Rex", "csrf_token": "mine"}, client.payload.Map())
}

func TestCreateRecord_EmptyConfigurationSendsNoProperties(t *testing.T) {
	client := &mockObjectClient{}
	mux := setupMux(t, client, []string{})

	rec := postForm(t, mux, url.Values{"name": {"Rex"}}, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, client.payload.Map())
}

func TestStaticAssetsServed(t *testing.T) {
	mux := setupMux(t, &mockObjectClient{}, []string{"name"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".alert-error")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}
