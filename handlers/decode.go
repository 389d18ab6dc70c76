package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/akinalp/shopapi/pkg"
)

// maxJSONBody caps JSON request bodies. Multipart uploads have their own
// limit derived from the image size cap.
const maxJSONBody = 1 << 20

var (
	errInvalidBody  = fmt.Errorf("%w: invalid request body", pkg.ErrValidation)
	errBodyTooLarge = fmt.Errorf("%w: request body too large", pkg.ErrValidation)
)

// decodeJSON reads a JSON body of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeJSONBody(w, r, v, false)
}

// decodeJSONBody is decodeJSON that also accepts a missing body when
// allowEmpty is set.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return errInvalidBody
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(v)

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	case allowEmpty && errors.Is(err, io.EOF):
		return nil
	default:
		return errInvalidBody
	}
}
