package handlers

import (
	"errors"
	"net/http"

	"estatepro/services/gateway"
	"estatepro/services/negotiation"
	"estatepro/services/payment"
	"estatepro/services/storage"
	"estatepro/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var negotiationStatus = map[string]int{
	negotiation.CodeValidation:   http.StatusBadRequest,
	negotiation.CodePrecondition: http.StatusConflict,
	negotiation.CodeInFlight:     http.StatusConflict,
	negotiation.CodeNotFound:     http.StatusNotFound,
}

var gatewayStatus = map[gateway.Kind]int{
	gateway.KindNetwork:        http.StatusBadGateway,
	gateway.KindServerRejected: http.StatusUnprocessableEntity,
	gateway.KindMalformed:      http.StatusBadGateway,
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var ne *negotiation.NegotiationError
	var ge *gateway.Error
	var pe *payment.Error
	var se *storage.Error

	switch {
	case errors.As(err, &ne):
		utils.JSONError(c, negotiationStatus[ne.Code], ne.Code, ne.Message, "")
	case errors.As(err, &ge):
		message := "The scheduling service is unavailable. Please try again."
		switch ge.Kind {
		case gateway.KindServerRejected:
			message = ge.Message
		case gateway.KindMalformed:
			message = "The scheduling service returned an unexpected response."
		}
		utils.JSONError(c, gatewayStatus[ge.Kind], "gateway_"+string(ge.Kind), message, ge.Endpoint)
	case errors.As(err, &pe):
		status := http.StatusBadRequest
		if pe.Kind == payment.KindUnavailable {
			status = http.StatusBadGateway
		}
		utils.JSONError(c, status, pe.Kind, pe.Message, "")
	case errors.As(err, &se):
		if se.Kind == storage.KindUnavailable {
			utils.JSONError(c, http.StatusBadGateway, se.Kind, "The image service is unavailable. Please try again.", "")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, se.Kind, se.Message, "")
	default:
		getLogger(c).Error("unhandled service error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal", "Internal Server Error", "")
	}
}

func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONError(c, http.StatusBadRequest, negotiation.CodeValidation, message, details)
}
