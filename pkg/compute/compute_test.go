package compute_test

import (
	"context"
	"testing"
	"time"

	"github.com/nimbuscloud/nimbus/pkg/client"
	"github.com/nimbuscloud/nimbus/pkg/compute"
	"github.com/nimbuscloud/nimbus/pkg/pointer"
	"github.com/nimbuscloud/nimbus/pkg/resource"
)

type fakeService struct {
	response *client.Response
	lastURL  string
	lastBody string
}

func (f *fakeService) BaseURL() string { return "https://api.test/v2/servers" }

func (f *fakeService) AcceptedNamespaces() map[string]struct{} { return nil }

func (f *fakeService) Request(_ context.Context, url, method string, _ map[string]string, body string) (*client.Response, error) {
	f.lastURL = url
	f.lastBody = body
	if f.response != nil {
		return f.response, nil
	}
	return &client.Response{StatusCode: 202}, nil
}

func handle(svc resource.Service) *resource.Handle {
	return resource.FromFields(svc, compute.Kind, map[string]any{"id": "42"})
}

func TestActionPayloads(t *testing.T) {
	cases := []struct {
		name string
		call func(ctx context.Context, h *resource.Handle) error
		want string
	}{
		{
			name: "soft reboot",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.Reboot(ctx, h, false)
				return err
			},
			want: `{"reboot":{"type":"SOFT"}}`,
		},
		{
			name: "hard reboot",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.Reboot(ctx, h, true)
				return err
			},
			want: `{"reboot":{"type":"HARD"}}`,
		},
		{
			name: "change password",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.SetAdminPassword(ctx, h, "hunter2")
				return err
			},
			want: `{"changePassword":{"adminPass":"hunter2"}}`,
		},
		{
			name: "resize",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.Resize(ctx, h, "m1.large")
				return err
			},
			want: `{"resize":{"flavorRef":"m1.large"}}`,
		},
		{
			name: "confirm resize",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.ConfirmResize(ctx, h)
				return err
			},
			want: `{"confirmResize":{}}`,
		},
		{
			name: "rebuild without password",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.Rebuild(ctx, h, "img-1", nil)
				return err
			},
			want: `{"rebuild":{"imageRef":"img-1"}}`,
		},
		{
			name: "rebuild with password",
			call: func(ctx context.Context, h *resource.Handle) error {
				_, err := compute.Rebuild(ctx, h, "img-1", pointer.To("hunter2"))
				return err
			},
			want: `{"rebuild":{"adminPass":"hunter2","imageRef":"img-1"}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			if err := tc.call(context.Background(), handle(svc)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.lastBody != tc.want {
				t.Errorf("expected payload %s, got %s", tc.want, svc.lastBody)
			}
			if svc.lastURL != "https://api.test/v2/servers/42/action" {
				t.Errorf("expected action URL, got %q", svc.lastURL)
			}
		})
	}
}

func TestGet(t *testing.T) {
	svc := &fakeService{
		response: &client.Response{
			StatusCode: 200,
			Body:       `{"server": {"id": "42", "status": "ACTIVE", "name": "web-1", "created": "2026-08-01T12:00:00Z"}}`,
		},
	}

	h, err := compute.Get(context.Background(), svc, "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if compute.Name(h) != "web-1" {
		t.Errorf("expected name web-1, got %q", compute.Name(h))
	}

	created, err := compute.Created(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !created.Equal(want) {
		t.Errorf("expected created %v, got %v", want, created)
	}
}

func TestCreatedAbsent(t *testing.T) {
	h := resource.FromFields(&fakeService{}, compute.Kind, map[string]any{"id": "42"})

	created, err := compute.Created(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.IsZero() {
		t.Errorf("expected zero time for absent field, got %v", created)
	}
}
