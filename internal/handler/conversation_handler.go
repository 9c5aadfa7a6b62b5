package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pitchcoach/internal/pkg/errcode"
	"github.com/xxxsen/pitchcoach/internal/pkg/response"
	"github.com/xxxsen/pitchcoach/internal/service"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type uploadResponse struct {
	ConversationID string `json:"conversation_id"`
}

// Upload takes the call audio and the pitch document as one multipart
// request and runs the whole ingest pipeline before answering.
func (h *ConversationHandler) Upload(c *gin.Context) {
	audioName, audioData, err := readFormFile(c, "audio")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "audio file is required")
		return
	}
	pitchName, pitchData, err := readFormFile(c, "pitch")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "pitch document is required")
		return
	}
	id, err := h.conversations.Upload(c.Request.Context(), service.UploadInput{
		AudioName: audioName,
		Audio:     audioData,
		PitchName: pitchName,
		Pitch:     pitchData,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, uploadResponse{ConversationID: id})
}

func (h *ConversationHandler) GetTranscript(c *gin.Context) {
	segments, err := h.conversations.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, segments)
}

func (h *ConversationHandler) GetPitch(c *gin.Context) {
	steps, err := h.conversations.GetPitchSteps(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"steps": steps})
}

func readFormFile(c *gin.Context, field string) (string, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	opened, err := file.Open()
	if err != nil {
		return "", nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(opened)
	data, err := io.ReadAll(opened)
	if err != nil {
		return "", nil, err
	}
	return file.Filename, data, nil
}
