package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimbuscloud/nimbus/pkg/client"
)

// Common status values reported by the control plane. Status strings are
// free-form; these are only the ones the poller gives meaning to.
const (
	StatusActive = "ACTIVE"
	StatusError  = "ERROR"
)

// Link is a relation/href pair as reported by the service.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Service is the transport capability a handle operates through. It is
// implemented by client.Client and owns the base URL of one resource
// collection.
type Service interface {
	// BaseURL returns the collection's base URL.
	BaseURL() string

	// Request performs a blocking exchange. An empty method means GET. Any
	// HTTP status yields a response; only transport failures are errors.
	Request(ctx context.Context, url, method string, headers map[string]string, body string) (*client.Response, error)

	// AcceptedNamespaces returns the vendor-extension prefixes the service
	// accepts for dynamic properties.
	AcceptedNamespaces() map[string]struct{}
}

// Kind identifies a concrete resource type built on this abstraction. One Kind
// value is injected per handle at construction.
type Kind interface {
	// Name returns a human-readable type name, e.g. "server".
	Name() string

	// EnvelopeName returns the single top-level JSON key wrapping the
	// resource's fields in service responses.
	EnvelopeName() string
}

// Handle represents one remote resource instance.
//
// A handle is not safe for concurrent use; each handle is expected to have one
// logical owner at a time. The Service is shared across handles but never
// mutated here.
type Handle struct {
	svc  Service
	kind Kind

	// ID is empty until the resource is known to exist remotely.
	ID string

	// Status is meaningful only after at least one successful Refresh.
	Status string

	// Links are the relation/href pairs as last reported by the service.
	Links []Link

	// Fields holds every envelope field without a dedicated slot above.
	// Refresh merges into it and never resets it.
	Fields map[string]any

	props map[string]any
}

// Empty returns a handle with no remote state. Populate it via Refresh.
func Empty(svc Service, kind Kind) *Handle {
	return &Handle{
		svc:    svc,
		kind:   kind,
		Fields: make(map[string]any),
	}
}

// FromID returns a handle for the given identifier, hydrated by an immediate
// Refresh.
func FromID(ctx context.Context, svc Service, kind Kind, id string) (*Handle, error) {
	h := Empty(svc, kind)
	if err := h.Refresh(ctx, id); err != nil {
		return nil, err
	}
	return h, nil
}

// FromFields returns a handle whose entries are copied verbatim from an
// already-decoded field mapping. No validation and no network call.
func FromFields(svc Service, kind Kind, fields map[string]any) *Handle {
	h := Empty(svc, kind)
	for k, v := range fields {
		h.setField(k, v)
	}
	return h
}

// New dispatches on the shape of info: nil produces an empty handle, a string
// is treated as an id and refreshed, a field mapping is copied verbatim. Any
// other shape is an InvalidArgumentError.
func New(ctx context.Context, svc Service, kind Kind, info any) (*Handle, error) {
	switch v := info.(type) {
	case nil:
		return Empty(svc, kind), nil
	case string:
		return FromID(ctx, svc, kind, v)
	case map[string]any:
		return FromFields(svc, kind, v), nil
	default:
		return nil, &InvalidArgumentError{Type: fmt.Sprintf("%T", info)}
	}
}

// Service returns the owning service client.
func (h *Handle) Service() Service {
	return h.svc
}

// Kind returns the injected resource kind, which may be nil.
func (h *Handle) Kind() Kind {
	return h.kind
}

func (h *Handle) kindName() string {
	if h.kind == nil {
		return "resource"
	}
	return h.kind.Name()
}

// FindLink returns the href of the first link whose rel matches exactly. An
// empty rel means "self". Returns "" when no link matches.
func (h *Handle) FindLink(rel string) string {
	if rel == "" {
		rel = "self"
	}
	for _, l := range h.Links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

// URL resolves the handle's address. A self link wins; otherwise the service
// base URL plus the id. Optional suffix segments (e.g. "action") are appended
// slash-normalized and play no part in the self-link check.
func (h *Handle) URL(suffix ...string) (string, error) {
	var base string
	switch {
	case h.FindLink("self") != "":
		base = h.FindLink("self")
	case h.ID != "":
		base = strings.TrimRight(h.svc.BaseURL(), "/") + "/" + h.ID
	default:
		return "", ErrResourceURL
	}

	for _, s := range suffix {
		base = strings.TrimRight(base, "/") + "/" + strings.Trim(s, "/")
	}
	return base, nil
}

// SetProperty stores a vendor-extension property after validating that its
// prefix (the part before ":") is accepted by the service.
func (h *Handle) SetProperty(name string, value any) error {
	ns, _, _ := strings.Cut(name, ":")
	if _, ok := h.svc.AcceptedNamespaces()[ns]; !ok {
		return &PropertyError{Name: name}
	}
	if h.props == nil {
		h.props = make(map[string]any)
	}
	h.props[name] = value
	return nil
}

// Property reads back an extension property.
func (h *Handle) Property(name string) (any, bool) {
	v, ok := h.props[name]
	return v, ok
}

// Properties returns a copy of the stored extension properties.
func (h *Handle) Properties() map[string]any {
	out := make(map[string]any, len(h.props))
	for k, v := range h.props {
		out[k] = v
	}
	return out
}

// setField routes one envelope entry onto the handle. Identity, status and
// links land in their typed slots; everything else goes into Fields.
func (h *Handle) setField(key string, value any) {
	switch key {
	case "id":
		h.ID = asString(value)
	case "status":
		h.Status = asString(value)
	case "links":
		h.Links = decodeLinks(value)
	default:
		if h.Fields == nil {
			h.Fields = make(map[string]any)
		}
		h.Fields[key] = value
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func decodeLinks(v any) []Link {
	switch links := v.(type) {
	case []Link:
		return links
	case []any:
		out := make([]Link, 0, len(links))
		for _, raw := range links {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, Link{
				Rel:  asString(m["rel"]),
				Href: asString(m["href"]),
			})
		}
		return out
	default:
		return nil
	}
}
