package httpapi

import (
	"encoding/json"
	"net/http"
)

// decodeJSON reads and decodes a request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
