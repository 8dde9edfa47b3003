package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/bluelist"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func serve(h *bluelisthttp.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) bluelisthttp.ErrorResponse {
	t.Helper()
	var resp bluelisthttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_ListItems(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	store.On("Find", mock.Anything, bluelist.ItemType, bluelist.Filter(nil), 0).Return([]bluelist.Record{
		{ID: "a", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor1"}},
		{ID: "b", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor2"}},
	}, nil)

	rec := serve(handler, http.MethodGet, testRoot+"/items", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":"a","name":"sensor1"},{"id":"b","name":"sensor2"}]`, rec.Body.String())
}

func TestHandler_ListItems_Empty(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 0).Return(nil, nil)

	rec := serve(handler, http.MethodGet, testRoot+"/items", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_ListItems_BackendError(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 0).Return(nil, errors.New("connection refused"))

	rec := serve(handler, http.MethodGet, testRoot+"/items", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "backend_error", resp.Error)
	assert.Contains(t, resp.Message, "connection refused")
}

func TestHandler_GetItem(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, bluelist.Filter{"id": "abc"}, 1).Return([]bluelist.Record{
		{ID: "abc", Fields: map[string]any{"name": "sensor1"}},
	}, nil)

	rec := serve(handler, http.MethodGet, testRoot+"/item/abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"abc","name":"sensor1"}]`, rec.Body.String())
}

func TestHandler_GetItem_NeverReturnsMoreThanOne(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 1).Return([]bluelist.Record{
		{ID: "abc", Fields: map[string]any{}},
		{ID: "abc", Fields: map[string]any{"dup": true}},
	}, nil)

	rec := serve(handler, http.MethodGet, testRoot+"/item/abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}

func TestHandler_GetItem_NotFound(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 1).Return([]bluelist.Record{}, nil)

	rec := serve(handler, http.MethodGet, testRoot+"/item/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No such item found", rec.Body.String())
}

func TestHandler_GetItem_BackendError(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 1).Return(nil, errors.New("boom"))

	rec := serve(handler, http.MethodGet, testRoot+"/item/abc", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "backend_error", decodeError(t, rec).Error)
}

func TestHandler_CreateItem(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Insert", mock.Anything, bluelist.ItemType, map[string]any{"name": "sensor1"}).
		Return(bluelist.Record{ID: "new-id", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor1"}}, nil)

	rec := serve(handler, http.MethodPost, testRoot+"/item", `{"name":"sensor1","id":"client-chosen"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"new-id","name":"sensor1"}`, rec.Body.String())
}

func TestHandler_CreateItem_KeepsWideIntegers(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	want := map[string]any{
		"n":   json.Number("9007199254740993"),
		"big": json.Number("12345678901234567890"),
		"f":   json.Number("0.1"),
	}
	store.On("Insert", mock.Anything, bluelist.ItemType, want).
		Return(bluelist.Record{ID: "new-id", Type: bluelist.ItemType, Fields: want}, nil)

	rec := serve(handler, http.MethodPost, testRoot+"/item", `{"n":9007199254740993,"big":12345678901234567890,"f":0.1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"n":9007199254740993`)
	assert.Contains(t, rec.Body.String(), `"big":12345678901234567890`)
	assert.JSONEq(t, `{"id":"new-id","n":9007199254740993,"big":12345678901234567890,"f":0.1}`, rec.Body.String())
}

func TestHandler_CreateItem_EmptyBody(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Insert", mock.Anything, bluelist.ItemType, map[string]any{}).
		Return(bluelist.Record{ID: "new-id", Fields: map[string]any{}}, nil)

	rec := serve(handler, http.MethodPost, testRoot+"/item", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"new-id"}`, rec.Body.String())
}

func TestHandler_CreateItem_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "syntax error", body: `{"name":`},
		{name: "array", body: `[1,2]`},
		{name: "trailing data", body: `{"a":1} {"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newTestHandler(t)

			rec := serve(handler, http.MethodPost, testRoot+"/item", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_body", decodeError(t, rec).Error)
		})
	}
}

func TestHandler_CreateItem_BodyTooLarge(t *testing.T) {
	handler, _, _ := newTestHandler(t, func(c *bluelisthttp.HandlerConfig) { c.MaxBodySize = 8 })

	rec := serve(handler, http.MethodPost, testRoot+"/item", `{"name":"a long sensor name"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_CreateItem_BackendError(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Insert", mock.Anything, bluelist.ItemType, mock.Anything).
		Return(bluelist.Record{}, errors.New("write rejected"))

	rec := serve(handler, http.MethodPost, testRoot+"/item", `{"name":"sensor1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "backend_error", resp.Error)
	assert.Contains(t, resp.Message, "write rejected")
}

func TestHandler_UpdateItem_MergesPayload(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	store.On("Get", mock.Anything, "abc").Return(bluelist.Record{
		ID: "abc", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor1", "level": float64(1)},
	}, nil)
	store.On("Update", mock.Anything, bluelist.Record{
		ID: "abc", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor1", "level": json.Number("4")},
	}).Return(bluelist.Record{
		ID: "abc", Type: bluelist.ItemType, Fields: map[string]any{"name": "sensor1", "level": json.Number("4")},
	}, nil)

	rec := serve(handler, http.MethodPut, testRoot+"/item/abc", `{"level":4}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"abc","name":"sensor1","level":4}`, rec.Body.String())
}

func TestHandler_UpdateItem_MissingItem(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Get", mock.Anything, "missing").Return(bluelist.Record{}, bluelist.ErrNotFound)

	rec := serve(handler, http.MethodPut, testRoot+"/item/missing", `{"level":4}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "backend_error", decodeError(t, rec).Error)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandler_UpdateItem_SaveFails(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Get", mock.Anything, "abc").Return(bluelist.Record{ID: "abc", Type: bluelist.ItemType, Fields: map[string]any{}}, nil)
	store.On("Update", mock.Anything, mock.Anything).Return(bluelist.Record{}, errors.New("conflict"))

	rec := serve(handler, http.MethodPut, testRoot+"/item/abc", `{"level":4}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "conflict")
}

func TestHandler_UpdateItem_MalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := serve(handler, http.MethodPut, testRoot+"/item/abc", `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteItem(t *testing.T) {
	tests := []struct {
		name       string
		deleted    bool
		deleteErr  error
		wantStatus int
		wantBody   string
	}{
		{name: "confirmed", deleted: true, wantStatus: http.StatusOK, wantBody: "Delete Successful."},
		{name: "not confirmed", deleted: false, wantStatus: http.StatusInternalServerError, wantBody: "delete failed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store, _ := newTestHandler(t)
			store.On("Get", mock.Anything, "abc").Return(bluelist.Record{ID: "abc", Type: bluelist.ItemType, Fields: map[string]any{}}, nil)
			store.On("Delete", mock.Anything, "abc").Return(tt.deleted, tt.deleteErr)

			rec := serve(handler, http.MethodDelete, testRoot+"/item/abc", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandler_DeleteItem_BackendError(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Get", mock.Anything, "abc").Return(bluelist.Record{ID: "abc", Fields: map[string]any{}}, nil)
	store.On("Delete", mock.Anything, "abc").Return(false, errors.New("unavailable"))

	rec := serve(handler, http.MethodDelete, testRoot+"/item/abc", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "backend_error", decodeError(t, rec).Error)
}

func TestHandler_DeleteItem_LookupFails(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	store.On("Get", mock.Anything, "missing").Return(bluelist.Record{}, bluelist.ErrNotFound)

	rec := serve(handler, http.MethodDelete, testRoot+"/item/missing", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "backend_error", decodeError(t, rec).Error)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestHandler_BackendTimeout(t *testing.T) {
	handler, store, _ := newTestHandler(t, func(c *bluelisthttp.HandlerConfig) {
		c.BackendTimeout = 20 * time.Millisecond
	})

	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 0).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	rec := serve(handler, http.MethodGet, testRoot+"/items", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "deadline exceeded")
}

func TestHandler_EachRequestGetsItsOwnBackend(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	router := handler.Router()

	var seen []bluelist.Backend
	store.On("Find", mock.Anything, bluelist.ItemType, mock.Anything, 0).
		Run(func(args mock.Arguments) {
			b, ok := bluelisthttp.BackendFromContext(args.Get(0).(context.Context))
			require.True(t, ok)
			seen = append(seen, b)
		}).
		Return([]bluelist.Record{}, nil).Twice()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testRoot+"/items", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}
