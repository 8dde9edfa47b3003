package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

type signingRequest struct {
	FileName string `json:"fileName" validate:"required"`
}

// handleSigning issues an upload policy for the requested file name. The
// body is JSON or an urlencoded form.
func (h *Handler) handleSigning(w http.ResponseWriter, r *http.Request) {
	var req signingRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			writeBodyError(w, err)
			return
		}
		req.FileName = r.PostForm.Get("fileName")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBodyError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "fileName is required")
		return
	}

	signed, err := h.signer.Sign(req.FileName)
	if err != nil {
		HandleError(w, err)
		return
	}

	h.logger.Info("issued upload policy", "bucket", signed.Bucket, "file_name", req.FileName)
	_ = WriteJSON(w, http.StatusOK, signed)
}
