package resource_test

import (
	"context"
	"testing"

	"github.com/nimbuscloud/nimbus/pkg/client"
	"github.com/nimbuscloud/nimbus/pkg/resource"
)

func TestRefresh(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{
		{StatusCode: 200, Body: `{"server": {"status": "ACTIVE", "id": "42"}}`},
	}

	h := resource.FromFields(svc, serverKind{}, map[string]any{"name": "web-1"})
	if err := h.Refresh(context.Background(), "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.ID != "42" {
		t.Errorf("expected id 42, got %q", h.ID)
	}
	if h.Status != "ACTIVE" {
		t.Errorf("expected status ACTIVE, got %q", h.Status)
	}
	if h.Fields["name"] != "web-1" {
		t.Errorf("expected unrelated field to survive the merge, got %v", h.Fields["name"])
	}

	if len(svc.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(svc.requests))
	}
	req := svc.requests[0]
	if req.Method != "GET" {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if req.URL != "https://api.test/v2/servers/42" {
		t.Errorf("expected canonical collection URL, got %q", req.URL)
	}
}

func TestRefreshIgnoresSelfLink(t *testing.T) {
	svc := newFake()
	h := resource.FromFields(svc, serverKind{}, map[string]any{
		"id": "42",
		"links": []any{
			map[string]any{"rel": "self", "href": "https://elsewhere.test/servers/42"},
		},
	})

	if err := h.Refresh(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.requests[0].URL != "https://api.test/v2/servers/42" {
		t.Errorf("refresh must use the collection path, got %q", svc.requests[0].URL)
	}
}

func TestRefreshIDRequired(t *testing.T) {
	svc := newFake()
	h := resource.Empty(svc, serverKind{})

	if err := h.Refresh(context.Background(), ""); err != resource.ErrIDRequired {
		t.Errorf("expected ErrIDRequired, got %v", err)
	}
	if len(svc.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(svc.requests))
	}
}

func TestRefreshNotFound(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{
		{StatusCode: 404, Body: `{"itemNotFound": {"message": "gone"}}`},
	}

	h := resource.Empty(svc, serverKind{})
	err := h.Refresh(context.Background(), "42")

	var notFound *resource.NotFoundError
	if !asError(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.ID != "42" || notFound.Kind != "server" {
		t.Errorf("expected kind/id in error, got %+v", notFound)
	}
}

func TestRefreshUnknownStatus(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{
		{StatusCode: 503, Body: "service unavailable"},
	}

	h := resource.Empty(svc, serverKind{})
	err := h.Refresh(context.Background(), "42")

	var unknown *resource.UnknownError
	if !asError(err, &unknown) {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if unknown.Code != 503 || unknown.Body != "service unavailable" {
		t.Errorf("expected status and body carried, got %+v", unknown)
	}
}

func TestRefreshEmptyBody(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{{StatusCode: 200}}

	h := resource.FromFields(svc, serverKind{}, map[string]any{"id": "42", "name": "web-1"})
	if err := h.Refresh(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Fields["name"] != "web-1" || h.ID != "42" {
		t.Errorf("empty body must not change fields")
	}
}

func TestRefreshDecodeFailure(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"server": `},
		{"wrong envelope", `{"instance": {"id": "42"}}`},
		{"extra top-level key", `{"server": {"id": "42"}, "meta": {}}`},
		{"non-object envelope", `{"server": "42"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFake()
			svc.responses = []*client.Response{{StatusCode: 200, Body: tc.body}}

			h := resource.Empty(svc, serverKind{})
			err := h.Refresh(context.Background(), "42")

			var decodeErr *resource.DecodeError
			if !asError(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestRefreshNilKind(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{
		{StatusCode: 200, Body: `{"server": {"id": "42"}}`},
	}

	h := resource.Empty(svc, nil)
	if err := h.Refresh(context.Background(), "42"); err != resource.ErrDocument {
		t.Errorf("expected ErrDocument, got %v", err)
	}
}

func TestRefreshExtensionProperties(t *testing.T) {
	svc := newFake()
	svc.responses = []*client.Response{
		{StatusCode: 200, Body: `{"server": {"id": "42", "vendorX:flag": "on", "vendorY:flag": "off"}}`},
	}

	h := resource.Empty(svc, serverKind{})
	if err := h.Refresh(context.Background(), "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := h.Property("vendorX:flag"); !ok || v != "on" {
		t.Errorf("expected accepted namespace stored, got %v (ok=%v)", v, ok)
	}
	if _, ok := h.Property("vendorY:flag"); ok {
		t.Errorf("unaccepted namespace must be dropped")
	}
	if _, ok := h.Fields["vendorY:flag"]; ok {
		t.Errorf("rejected property must not leak into Fields")
	}
}
