package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Refresh synchronizes local state from the remote service. The effective id
// is the argument if non-empty, else the handle's current id. Refresh always
// uses the canonical collection path, ignoring any self link.
//
// Refresh merges: fields present in the new document overwrite or extend the
// handle's state, fields absent from it are left untouched. An empty response
// body is a successful no-op.
func (h *Handle) Refresh(ctx context.Context, id string) error {
	if id == "" {
		id = h.ID
	}
	if id == "" {
		return ErrIDRequired
	}

	url := strings.TrimRight(h.svc.BaseURL(), "/") + "/" + id

	resp, err := h.svc.Request(ctx, url, http.MethodGet, nil, "")
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Kind: h.kindName(), ID: id}
	case resp.StatusCode >= 300:
		return &UnknownError{Code: resp.StatusCode, Body: resp.Body}
	}

	if resp.Body == "" {
		return nil
	}

	if h.kind == nil {
		return ErrDocument
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &doc); err != nil {
		return &DecodeError{Msg: "failed to decode resource document", Cause: err}
	}

	envelope := h.kind.EnvelopeName()
	inner, ok := doc[envelope]
	if !ok || len(doc) != 1 {
		return &DecodeError{Msg: "document is not a single " + envelope + " envelope"}
	}
	fields, ok := inner.(map[string]any)
	if !ok {
		return &DecodeError{Msg: envelope + " envelope does not contain an object"}
	}

	h.merge(fields)
	return nil
}

// merge applies authoritative remote fields. Namespaced names go through the
// extension-property validator; names outside an accepted namespace are
// dropped, not stored.
func (h *Handle) merge(fields map[string]any) {
	for k, v := range fields {
		if strings.Contains(k, ":") {
			if err := h.SetProperty(k, v); err != nil {
				log.Debug().
					Str("kind", h.kindName()).
					Str("property", k).
					Msg("Dropping property outside accepted namespaces")
			}
			continue
		}
		h.setField(k, v)
	}
}
