package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/middleware"
	"baobyte/internal/models"
	"baobyte/internal/registration"
)

type RegisterHandler struct {
	flow *registration.Flow
}

func NewRegisterHandler(flow *registration.Flow) *RegisterHandler {
	return &RegisterHandler{flow: flow}
}

// outcomeStatus maps a machine outcome to an HTTP status code.
func outcomeStatus(outcome registration.Outcome) int {
	switch outcome {
	case registration.OutcomeBlocked:
		return http.StatusForbidden
	case registration.OutcomeCodeMismatch, registration.OutcomeExpired:
		return http.StatusBadRequest
	case registration.OutcomeSessionMissing:
		return http.StatusConflict
	case registration.OutcomeFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func writeResult(c *gin.Context, result registration.Result) {
	body := gin.H{}
	if result.Message != "" {
		body["message"] = messages.Render(result.Message, result.Fields)
	}
	switch result.Outcome {
	case registration.OutcomeVerify, registration.OutcomeResent:
		body["step"] = models.StepVerify
	case registration.OutcomeForm, registration.OutcomeExpired, registration.OutcomeSessionMissing, registration.OutcomeFailure:
		body["step"] = models.StepForm
	case registration.OutcomeBlocked:
		body["step"] = models.StepBlocked
	}
	c.JSON(outcomeStatus(result.Outcome), body)
}

func (h *RegisterHandler) flowError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, registration.ErrCaptchaFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.CaptchaInvalid)})
	case errors.Is(err, registration.ErrMailTransport):
		log.Printf("[register][%s] mail transport: %v", op, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": messages.Text(messages.GenericError)})
	default:
		log.Printf("[register][%s] error: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
	}
}

// @Summary      Start registration
// @Description  Validates the form, sends a verification code to the given email
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        form  body      models.RegisterRequest  true  "Registration form"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]string
// @Router       /register [post]
func (h *RegisterHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, fieldErrs, err := h.flow.SubmitForm(c.Request.Context(), middleware.SessionID(c), c.ClientIP(), &req)
	if err != nil {
		h.flowError(c, "form", err)
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}
	writeResult(c, result)
}

// @Summary      Confirm verification code
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        code  body      models.ConfirmRequest  true  "Verification code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /register/confirm [post]
func (h *RegisterHandler) Confirm(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.flow.SubmitCode(c.Request.Context(), middleware.SessionID(c), req.Code)
	if err != nil {
		h.flowError(c, "confirm", err)
		return
	}
	writeResult(c, result)
}

// @Summary      Resend verification code
// @Tags         Registration
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /register/resend [post]
func (h *RegisterHandler) Resend(c *gin.Context) {
	result, err := h.flow.Resend(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.flowError(c, "resend", err)
		return
	}
	writeResult(c, result)
}

// Show is the GET of the registration flow: it applies the abandon accounting
// for returning to an expired verification and reports which step to render.
func (h *RegisterHandler) Show(c *gin.Context) {
	result, err := h.flow.Revisit(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.flowError(c, "show", err)
		return
	}
	writeResult(c, result)
}

// Status reports whether the current code is still valid and for how long.
// Polled by the verify page countdown.
func (h *RegisterHandler) Status(c *gin.Context) {
	status, err := h.flow.Status(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.flowError(c, "status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}
