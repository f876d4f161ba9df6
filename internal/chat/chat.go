/*
Package chat implements the health Q&A pipeline: domain classification,
prompt assembly, the generation call, and normalization of the model's reply
into discrete points. It serves both the text-only and the text+image
endpoints.
*/
package chat

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"EarlyPulse_V0.1/internal/geminiservice"
	"EarlyPulse_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

// allowedImageTypes maps accepted upload extensions to the media type sent to
// the model.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest is the JSON body of the text-only chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatData is the success payload for both chat endpoints. Timestamp is
// captured when the response is assembled, not when the request arrived.
type ChatData struct {
	Points    []string  `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler serves the chat endpoints. The generation client is injected so
// tests can substitute a fake backend.
type Handler struct {
	gen        Generator
	classifier *Classifier
}

// NewHandler wires a chat Handler around the given generation client.
func NewHandler(gen Generator) *Handler {
	return &Handler{
		gen:        gen,
		classifier: NewClassifier(gen),
	}
}

/* =================================================================================
								HANDLERS
=================================================================================*/

// ChatHandler answers a text-only health question as a list of points.
func (h *Handler) ChatHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.RequestLogger(c)

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return utility.Fail(c, http.StatusBadRequest, "MissingInput", "request body must be JSON with a message field")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return utility.Fail(c, http.StatusBadRequest, "MissingInput", "message is required")
	}

	if !h.classifier.IsHealthRelated(ctx, message) {
		logger.Info().Msg("query rejected as out of domain")
		return utility.Fail(c, http.StatusBadRequest, "OutOfDomain", "I can only help with healthcare, medicine and wellness questions.")
	}

	reply, err := h.gen.GenerateContent(ctx, geminiservice.BuildChatParts(message, "", nil))
	if err != nil {
		logger.Error().Err(err).Msg("chat generation failed")
		return utility.Fail(c, http.StatusInternalServerError, "GenerationFailure", err.Error())
	}

	return utility.OK(c, ChatData{
		Points:    NormalizePoints(reply),
		Timestamp: time.Now().UTC(),
	})
}

// ChatWithImageHandler answers a multipart request carrying an optional
// message and an optional image. Text-bearing requests pass through the
// domain gate; image-only requests skip it, since the image instruction
// itself pins the model to health analysis.
func (h *Handler) ChatWithImageHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.RequestLogger(c)

	message := strings.TrimSpace(c.FormValue("message"))
	fileHeader, fileErr := c.FormFile("image")
	if message == "" && fileErr != nil {
		return utility.Fail(c, http.StatusBadRequest, "MissingInput", "provide a message, an image, or both")
	}

	var (
		imageData []byte
		mimeType  string
	)
	if fileErr == nil {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		mime, ok := allowedImageTypes[ext]
		if !ok {
			return utility.Fail(c, http.StatusBadRequest, "ImageProcessingFailure", "image must be jpg, jpeg, png or gif")
		}
		mimeType = mime

		tmpPath, err := saveUploadToTemp(fileHeader, ext)
		if err != nil {
			logger.Error().Err(err).Msg("failed to stage uploaded image")
			return utility.Fail(c, http.StatusBadRequest, "ImageProcessingFailure", "could not read uploaded image")
		}
		// One removal covers every exit path below: classification reject,
		// generation failure, and success.
		defer os.Remove(tmpPath)

		imageData, err = os.ReadFile(tmpPath)
		if err != nil {
			logger.Error().Err(err).Msg("failed to read staged image")
			return utility.Fail(c, http.StatusBadRequest, "ImageProcessingFailure", "could not read uploaded image")
		}
	}

	if message != "" && !h.classifier.IsHealthRelated(ctx, message) {
		logger.Info().Msg("query rejected as out of domain")
		return utility.Fail(c, http.StatusBadRequest, "OutOfDomain", "I can only help with healthcare, medicine and wellness questions.")
	}

	reply, err := h.gen.GenerateContent(ctx, geminiservice.BuildChatParts(message, mimeType, imageData))
	if err != nil {
		logger.Error().Err(err).Msg("chat generation failed")
		return utility.Fail(c, http.StatusInternalServerError, "GenerationFailure", err.Error())
	}

	return utility.OK(c, ChatData{
		Points:    NormalizePoints(reply),
		Timestamp: time.Now().UTC(),
	})
}

// saveUploadToTemp copies a multipart upload into a request-scoped temp file
// and returns its path. The caller owns removal.
func saveUploadToTemp(fileHeader *multipart.FileHeader, ext string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "earlypulse-upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
