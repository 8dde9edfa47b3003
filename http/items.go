package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sagarc03/bluelist"
)

const (
	notFoundMessage      = "No such item found"
	deleteSuccessMessage = "Delete Successful."
	deleteFailedMessage  = "delete failed."
)

func (h *Handler) backend(w http.ResponseWriter, r *http.Request) (bluelist.Backend, bool) {
	b, ok := BackendFromContext(r.Context())
	if !ok {
		HandleError(w, fmt.Errorf("no backend attached to request: %w", bluelist.ErrInternal))
		return nil, false
	}
	return b, true
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	b, ok := h.backend(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	records, err := b.Query(bluelist.ItemType).Find(ctx, nil, nil).Await(ctx)
	if err != nil {
		WriteBackendError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	b, ok := h.backend(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	records, err := b.Query(bluelist.ItemType).
		Find(ctx, bluelist.Filter{bluelist.IDField: id}, &bluelist.FindOptions{Limit: 1}).
		Await(ctx)
	if err != nil {
		WriteBackendError(w, err)
		return
	}

	if len(records) == 0 {
		WriteText(w, http.StatusNotFound, notFoundMessage)
		return
	}

	_ = WriteJSON(w, http.StatusOK, records[:1])
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	b, ok := h.backend(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	rec, err := b.Object(bluelist.ItemType, payload).Save(ctx).Await(ctx)
	if err != nil {
		WriteBackendError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	b, ok := h.backend(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	saved := bluelist.Then(ctx, b.ObjectByID(ctx, id), func(obj bluelist.Object) *bluelist.Future[bluelist.Record] {
		obj.Set(payload)
		return obj.Save(ctx)
	})

	rec, err := saved.Await(ctx)
	if err != nil {
		h.logger.Error("update item failed", "id", id, "error", err)
		WriteBackendError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	b, ok := h.backend(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	deleted := bluelist.Then(ctx, b.ObjectByID(ctx, id), func(obj bluelist.Object) *bluelist.Future[bluelist.DeleteResult] {
		return obj.Delete(ctx)
	})

	result, err := deleted.Await(ctx)
	if err != nil {
		WriteBackendError(w, err)
		return
	}

	if !result.IsDeleted() {
		h.logger.Warn("delete not confirmed", "id", id, "error", bluelist.ErrDeleteNotConfirmed)
		WriteText(w, http.StatusInternalServerError, deleteFailedMessage)
		return
	}

	WriteText(w, http.StatusOK, deleteSuccessMessage)
}

// decodePayload reads a JSON object body. An empty body is an empty payload.
// Numbers stay json.Number so integers wider than 53 bits survive.
func decodePayload(r *http.Request) (map[string]any, error) {
	var payload map[string]any

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON body")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		HandleError(w, err)
		return
	}
	WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
}
