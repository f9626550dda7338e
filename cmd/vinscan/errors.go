package main

import (
	"errors"
	"fmt"

	"vinscan/internal/history"
	"vinscan/internal/location"
	"vinscan/internal/recognition"
	"vinscan/internal/services"
	"vinscan/internal/session"
	"vinscan/internal/vin"
)

// explainError appends the operator's next step to well-known failures.
func explainError(err error) string {
	if err == nil {
		return ""
	}
	hint := errorHint(err)
	if hint == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v\n  hint: %s", err, hint)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, location.ErrNotLocked):
		return "select a location and confirm it with `vinscan location lock`"
	case errors.Is(err, location.ErrLocked):
		return "run `vinscan location change` to pick another location"
	case errors.Is(err, location.ErrNotAllowed):
		return "add it with `vinscan settings location add CODE` or choose a listed code"
	case errors.Is(err, location.ErrEmptyLocation):
		return "select a location with `vinscan location select CODE` or `vinscan location scan IMAGE`"
	case errors.Is(err, vin.ErrIncompleteVin):
		return "re-capture the VIN plate or type it with `vinscan vin enter`"
	case errors.Is(err, vin.ErrDuplicateVin):
		return "this vehicle is already in stock; nothing was changed"
	case errors.Is(err, recognition.ErrNoVIN):
		return "move closer to the VIN plate and try again, or type it with `vinscan vin enter`"
	case errors.Is(err, recognition.ErrNotConfigured):
		return "set recognition.api_key or export VINSCAN_API_KEY; manual entry keeps working"
	case errors.Is(err, recognition.ErrUnsupportedImage):
		return "use a JPEG, PNG, WebP, GIF, BMP or TIFF still image"
	case errors.Is(err, session.ErrNoDraft):
		return "scan a VIN with `vinscan scan vin IMAGE` or type one with `vinscan vin enter`"
	case errors.Is(err, history.ErrEmptyHistory):
		return "save at least one vehicle before exporting"
	case errors.Is(err, services.ErrBusy):
		return "wait for the other vinscan command to finish"
	case errors.Is(err, services.ErrStale):
		return "the location changed while recognition ran; capture again"
	case !services.Recoverable(err):
		return "retrying will not help; fix the configuration and check it with `vinscan config validate`"
	case errors.Is(err, services.ErrTransport):
		return "check the network connection and try again"
	default:
		return ""
	}
}
