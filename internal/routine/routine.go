/*
Package routine implements daily-routine generation: it turns a user's
questionnaire answers into a Gemini prompt, parses the reply as a strict JSON
task list, and upserts the result as the user's single routine document.
*/
package routine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"EarlyPulse_V0.1/internal/database"
	"EarlyPulse_V0.1/internal/geminiservice"
	"EarlyPulse_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

// Generator is the slice of the Gemini client the routine package depends on.
type Generator interface {
	GenerateContent(ctx context.Context, parts []geminiservice.Part) (string, error)
}

// Store persists routine documents keyed by user.
type Store interface {
	UpsertRoutine(ctx context.Context, userID string, routine []string) (database.RoutineDocument, error)
	GetRoutine(ctx context.Context, userID string) (database.RoutineDocument, error)
}

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// CurrentRequest is the JSON body of the fetch-current endpoint.
type CurrentRequest struct {
	UserID string `json:"userId"`
}

// GenerateRequest is the JSON body of the generate endpoint. Answers must
// match the question set positionally, one answer per question.
type GenerateRequest struct {
	UserID  string   `json:"userId"`
	Answers []string `json:"answers"`
}

// RoutineData is the success payload for both routine endpoints.
type RoutineData struct {
	Routine   []string  `json:"routine"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Handler serves the routine endpoints.
type Handler struct {
	gen   Generator
	store Store
}

// NewHandler wires a routine Handler around the generation client and store.
func NewHandler(gen Generator, store Store) *Handler {
	return &Handler{gen: gen, store: store}
}

/* =================================================================================
								HANDLERS
=================================================================================*/

// QuestionsHandler returns the fixed onboarding questionnaire.
func (h *Handler) QuestionsHandler(c echo.Context) error {
	return utility.OK(c, map[string]interface{}{
		"questions": geminiservice.RoutineQuestions,
	})
}

// CurrentHandler returns the most recently generated routine for a user.
func (h *Handler) CurrentHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req CurrentRequest
	if err := c.Bind(&req); err != nil {
		return utility.Fail(c, http.StatusBadRequest, "MissingUserId", "request body must be JSON with a userId field")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return utility.Fail(c, http.StatusBadRequest, "MissingUserId", "userId is required")
	}

	doc, err := h.store.GetRoutine(ctx, req.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return utility.Fail(c, http.StatusNotFound, "NotFound", "no routine has been generated for this user yet")
	}
	if err != nil {
		utility.RequestLogger(c).Error().Err(err).Msg("failed to fetch routine")
		return utility.Fail(c, http.StatusInternalServerError, "InternalError", "failed to fetch routine")
	}

	return utility.OK(c, RoutineData{
		Routine:   doc.Routine,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
}

// GenerateHandler creates or replaces a user's daily routine from their
// questionnaire answers. Validation happens before any generation call: a
// wrong answer count never costs a Gemini request.
func (h *Handler) GenerateHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.RequestLogger(c)

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return utility.Fail(c, http.StatusBadRequest, "MissingUserId", "request body must be JSON with userId and answers fields")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return utility.Fail(c, http.StatusBadRequest, "MissingUserId", "userId is required")
	}
	if len(req.Answers) != len(geminiservice.RoutineQuestions) {
		return utility.Fail(c, http.StatusBadRequest, "AnswerCountMismatch", "exactly one answer per question is required")
	}

	prompt := geminiservice.BuildRoutinePrompt(geminiservice.RoutineQuestions, req.Answers)
	reply, err := h.gen.GenerateContent(ctx, []geminiservice.Part{geminiservice.TextPart(prompt)})
	if err != nil {
		logger.Error().Err(err).Msg("routine generation failed")
		return utility.Fail(c, http.StatusInternalServerError, "GenerationFailure", err.Error())
	}

	tasks, err := ParseRoutine(reply)
	if err != nil {
		logger.Error().Str("reply", reply).Msg("routine reply failed strict parsing")
		return utility.Fail(c, http.StatusInternalServerError, "MalformedRoutineOutput", err.Error())
	}

	doc, err := h.store.UpsertRoutine(ctx, req.UserID, tasks)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store routine")
		return utility.Fail(c, http.StatusInternalServerError, "InternalError", "failed to store routine")
	}

	return utility.OK(c, RoutineData{
		Routine:   doc.Routine,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
}
