package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/nimbuscloud/nimbus/pkg/client"
)

// Do posts an operation payload to the resource's action sub-resource. The
// payload must serialize to a JSON object. On success the raw response is
// returned for the caller to inspect; nothing is decoded into the handle.
func (h *Handle) Do(ctx context.Context, payload any) (*client.Response, error) {
	if h.ID == "" {
		return nil, ErrIDRequired
	}

	if !isObject(payload) {
		return nil, &ActionError{
			Kind: h.kindName(),
			Msg:  fmt.Sprintf("payload must be an object, got %T", payload),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ActionError{
			Kind:  h.kindName(),
			Msg:   "failed to serialize payload",
			Cause: err,
		}
	}

	url, err := h.URL("action")
	if err != nil {
		return nil, err
	}

	resp, err := h.svc.Request(ctx, url, http.MethodPost, map[string]string{}, string(body))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("transport returned no response for %s", url)
	}

	if resp.StatusCode >= 300 {
		return nil, &ActionError{
			Kind: h.kindName(),
			URL:  url,
			Code: resp.StatusCode,
			Body: resp.Body,
		}
	}

	return resp, nil
}

// isObject reports whether the payload would serialize to a JSON object.
func isObject(payload any) bool {
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	default:
		return false
	}
}
