package handler

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/service"
)

const maxUploadBody = 12 << 20

type AttachmentHandler struct {
	fileService *service.FileService
}

func NewAttachmentHandler(fileService *service.FileService) *AttachmentHandler {
	return &AttachmentHandler{fileService: fileService}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.fileService.Enabled() {
		writeMessage(w, http.StatusServiceUnavailable, "attachments are not enabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(maxUploadBody)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	_ = file.Close()

	uploaded, err := h.fileService.UploadGoalAttachment(r.Context(), user.ID, r.PathValue("id"), header)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploaded)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.GoalAttachments(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.fileService.DeleteGoalAttachment(r.Context(), user.ID, r.PathValue("id"), r.PathValue("fileID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
