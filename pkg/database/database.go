package database

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/nimbuscloud/nimbus/pkg/client"
	"github.com/nimbuscloud/nimbus/pkg/resource"
)

// Kind is the managed database instance resource kind. Instance documents
// arrive wrapped in an "instance" envelope.
var Kind resource.Kind = kind{}

type kind struct{}

func (kind) Name() string         { return "instance" }
func (kind) EnvelopeName() string { return "instance" }

// New returns an empty instance handle to be populated via Refresh.
func New(svc resource.Service) *resource.Handle {
	return resource.Empty(svc, Kind)
}

// Get returns a hydrated handle for the instance with the given id.
func Get(ctx context.Context, svc resource.Service, id string) (*resource.Handle, error) {
	return resource.FromID(ctx, svc, Kind, id)
}

// Restart reboots the underlying database process. The instance passes
// through a REBOOT status before returning to ACTIVE.
func Restart(ctx context.Context, h *resource.Handle) (*client.Response, error) {
	return h.Do(ctx, map[string]any{"restart": map[string]string{}})
}

// ResetRootPassword generates a new root password. The response body carries
// the generated credential; it is never written onto the handle.
func ResetRootPassword(ctx context.Context, h *resource.Handle) (*client.Response, error) {
	return h.Do(ctx, map[string]any{"resetRootPassword": map[string]string{}})
}

// Resize moves the instance to a new flavor.
func Resize(ctx context.Context, h *resource.Handle, flavorRef string) (*client.Response, error) {
	return h.Do(ctx, map[string]any{
		"resize": map[string]any{"flavorRef": flavorRef},
	})
}

// ResizeVolume grows the instance's storage volume to the given size in
// gigabytes.
func ResizeVolume(ctx context.Context, h *resource.Handle, sizeGB int) (*client.Response, error) {
	return h.Do(ctx, map[string]any{
		"resize": map[string]any{"volume": map[string]int{"size": sizeGB}},
	})
}

// Updated returns the instance's last-update timestamp, if reported.
func Updated(h *resource.Handle) (time.Time, error) {
	raw, ok := h.Fields["updated"].(string)
	if !ok {
		return time.Time{}, nil
	}
	dt, err := strfmt.ParseDateTime(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Time(dt), nil
}
