package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
)

const (
	maxJSONBody      = 1 << 20
	multipartMemory  = 8 << 20
	contentTypeMulti = "multipart/form-data"
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// readBody returns the raw request body, capped at maxJSONBody.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, invalid("unreadable body")
	}
	return body, nil
}

// decodeJSON decodes the request body into dst. An empty body is an error
// unless allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshal(body, dst, allowEmpty)
}

func unmarshal(body []byte, dst any, allowEmpty bool) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return invalid("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return invalid("malformed JSON: %v", err)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == contentTypeMulti
}

// parseMultipart reads a multipart form of at most maxBytes.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return invalid("malformed multipart form: %v", err)
	}
	return nil
}

// decodeForm copies the form values present in r into dst. Fields absent from
// the form keep their current value.
func decodeForm(r *http.Request, dst any) error {
	if err := formDecoder.Decode(dst, r.MultipartForm.Value); err != nil {
		return invalid("malformed form: %v", err)
	}
	return nil
}
