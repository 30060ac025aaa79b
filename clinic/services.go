// services.go - the billable service catalog.
package clinic

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/senoto/clinic-engine/docstore"
)

// Services manages the catalog of billable services.
type Services struct {
	store docstore.Store
	log   zerolog.Logger
}

// NewServices builds the service catalog container.
func NewServices(store docstore.Store, log zerolog.Logger) *Services {
	return &Services{
		store: store,
		log:   log.With().Str("component", "services").Logger(),
	}
}

// List returns the catalog ordered by service name.
func (s *Services) List(ctx context.Context) ([]Service, error) {
	docs, err := s.store.List(ctx, ColServices,
		docstore.ListOptions{}.WithOrder("serviceName", false))
	if err != nil {
		return nil, err
	}
	out := make([]Service, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeService(doc))
	}
	return out, nil
}

// Get returns one service by id.
func (s *Services) Get(ctx context.Context, id string) (Service, error) {
	docs, err := s.store.List(ctx, ColServices, docstore.ListOptions{})
	if err != nil {
		return Service{}, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return decodeService(doc), nil
		}
	}
	return Service{}, &docstore.NotFoundError{Collection: ColServices, ID: id}
}

// Create adds a service to the catalog.
func (s *Services) Create(ctx context.Context, svc Service) (Service, error) {
	if strings.TrimSpace(svc.ServiceName) == "" {
		return Service{}, &MissingFieldError{Field: "serviceName"}
	}
	doc, err := s.store.Create(ctx, ColServices, encodeService(svc))
	if err != nil {
		return Service{}, err
	}
	return decodeService(doc), nil
}

// Update rewrites a service's name and price. Existing transactions keep
// the name and amount they were created with.
func (s *Services) Update(ctx context.Context, svc Service) (Service, error) {
	doc, err := s.store.Update(ctx, ColServices, svc.ID, encodeService(svc))
	if err != nil {
		return Service{}, err
	}
	return decodeService(doc), nil
}

// Delete removes a service from the catalog.
func (s *Services) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, ColServices, id)
}
