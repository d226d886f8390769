// Package errdefs defines the error taxonomy shared by Lens services and
// transports: NotFound, InvalidArgument, OutOfRange and NotSupported.
// Services return categorized errors; the HTTP layer maps categories to
// status codes while preserving the original message text.
//
// Example:
//
//	if begin < 0 {
//	    return errdefs.OutOfRangef("Invalid begin index (%d)", begin)
//	}
//	...
//	if errdefs.IsOutOfRange(err) {
//	    writeError(w, http.StatusBadRequest, err.Error())
//	}
package errdefs
