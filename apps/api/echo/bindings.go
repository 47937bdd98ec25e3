package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/attendance"
)

type (
	SessionResponse struct {
		SessionID string `json:"sessionId"`
		Email     string `json:"email"`
	}

	LoginResponse struct {
		SessionResponse
		Roster     []string          `json:"roster"`
		Attendance attendance.Record `json:"attendance"`
	}

	DocumentResponse struct {
		Roster     []string          `json:"roster"`
		Attendance attendance.Record `json:"attendance"`
	}

	SaveRequest struct {
		SessionID  string            `json:"sessionId" validate:"required"`
		Roster     []string          `json:"roster"`
		Attendance attendance.Record `json:"attendance"`
	}

	OkResponse struct {
		Ok bool `json:"ok"`
	}
)

func (sr *SaveRequest) Validate(validate *validator.Validate) error {
	sr.SessionID = core.CleanString(sr.SessionID)
	return validate.Struct(sr)
}
