package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flant/negentropy/sepctl/pkg/openapi"
)

// EnsureSuccess returns nil for 2xx statuses and for statuses listed in
// excludes. Otherwise the whole body is read and returned in a
// *RemoteCallError. The body of a successful response is left unread.
func EnsureSuccess(resp *http.Response, excludes ...int) error {
	if IsSuccessStatus(resp.StatusCode) {
		return nil
	}
	for _, code := range excludes {
		if resp.StatusCode == code {
			return nil
		}
	}

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read body of %d response: %w", resp.StatusCode, err)
	}
	return &RemoteCallError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func IsSuccessStatus(code int) bool {
	return code >= 200 && code <= 299
}

// DecodeJSON reads the response body, validates it against schema and
// unmarshals it into out. The response is closed.
func DecodeJSON(resp *http.Response, schema openapi.Validator, out interface{}) error {
	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var obj interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("invalid json: %v", err), Body: string(body)}
	}

	if schema != nil {
		if _, err := schema.Validate(obj); err != nil {
			return &MalformedResponseError{Reason: err.Error(), Body: string(body)}
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Reason: err.Error(), Body: string(body)}
	}
	return nil
}

// Discard drains and closes the response body so the connection can be reused.
func Discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// First read the data into a buffer. Not super efficient but we want the
// whole body for diagnostics.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
