package compute

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/nimbuscloud/nimbus/pkg/client"
	"github.com/nimbuscloud/nimbus/pkg/resource"
)

// Kind is the server resource kind. Server documents arrive wrapped in a
// "server" envelope.
var Kind resource.Kind = kind{}

type kind struct{}

func (kind) Name() string         { return "server" }
func (kind) EnvelopeName() string { return "server" }

// New returns an empty server handle to be populated via Refresh.
func New(svc resource.Service) *resource.Handle {
	return resource.Empty(svc, Kind)
}

// Get returns a hydrated handle for the server with the given id.
func Get(ctx context.Context, svc resource.Service, id string) (*resource.Handle, error) {
	return resource.FromID(ctx, svc, Kind, id)
}

// Reboot requests a SOFT reboot, or a HARD one when hard is set.
func Reboot(ctx context.Context, h *resource.Handle, hard bool) (*client.Response, error) {
	rebootType := "SOFT"
	if hard {
		rebootType = "HARD"
	}
	return h.Do(ctx, map[string]any{
		"reboot": map[string]string{"type": rebootType},
	})
}

// SetAdminPassword changes the server's administrative password.
func SetAdminPassword(ctx context.Context, h *resource.Handle, password string) (*client.Response, error) {
	return h.Do(ctx, map[string]any{
		"changePassword": map[string]string{"adminPass": password},
	})
}

// Resize moves the server to a new flavor. The server stays in a VERIFY_RESIZE
// status until the resize is confirmed or reverted.
func Resize(ctx context.Context, h *resource.Handle, flavorRef string) (*client.Response, error) {
	return h.Do(ctx, map[string]any{
		"resize": map[string]string{"flavorRef": flavorRef},
	})
}

// ConfirmResize commits a pending resize.
func ConfirmResize(ctx context.Context, h *resource.Handle) (*client.Response, error) {
	return h.Do(ctx, map[string]any{"confirmResize": map[string]string{}})
}

// RevertResize rolls a pending resize back to the previous flavor.
func RevertResize(ctx context.Context, h *resource.Handle) (*client.Response, error) {
	return h.Do(ctx, map[string]any{"revertResize": map[string]string{}})
}

// Rebuild reinstalls the server from an image. A nil adminPass lets the
// service generate one.
func Rebuild(ctx context.Context, h *resource.Handle, imageRef string, adminPass *string) (*client.Response, error) {
	rebuild := map[string]string{"imageRef": imageRef}
	if adminPass != nil {
		rebuild["adminPass"] = *adminPass
	}
	return h.Do(ctx, map[string]any{"rebuild": rebuild})
}

// Name returns the server's display name, if reported.
func Name(h *resource.Handle) string {
	if v, ok := h.Fields["name"].(string); ok {
		return v
	}
	return ""
}

// Created returns the server's creation timestamp, parsed from the RFC 3339
// form the control plane reports.
func Created(h *resource.Handle) (time.Time, error) {
	raw, ok := h.Fields["created"].(string)
	if !ok {
		return time.Time{}, nil
	}
	dt, err := strfmt.ParseDateTime(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Time(dt), nil
}
