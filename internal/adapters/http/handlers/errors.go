package handlers

import (
	"errors"

	"xcr-courtage/internal/core/domain"
	"xcr-courtage/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// upstreamError maps domain and gateway errors to HTTP responses. Local
// validation failures are the caller's fault; transport and auth failures
// mean the upstream quoting API is unreachable or rejecting us.
func upstreamError(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return response.UnprocessableEntity(c, validationErr.Error())
	}

	var appErr *domain.ApplicationError
	if errors.As(err, &appErr) {
		return response.UnprocessableEntity(c, appErr.Message)
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return response.BadGateway(c, "Service de tarification temporairement indisponible")
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return response.BadGateway(c, "Authentification auprès du service de tarification impossible")
	}

	if errors.Is(err, domain.ErrProxyUnavailable) || errors.Is(err, domain.ErrEmptyEnvelope) {
		return response.BadGateway(c, "Service de tarification temporairement indisponible")
	}

	return response.InternalServerError(c, "Internal server error")
}
