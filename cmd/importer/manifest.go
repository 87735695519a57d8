package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/usecases"
)

// Manifest is the catalogue file layout. Ids are optional; when present
// they are kept so segments elsewhere can reference them.
type Manifest struct {
	Source string                  `json:"source"`
	Cities []domain.City           `json:"cities"`
	Offers []domain.TransportOffer `json:"offers"`
}

// Report counts what an import did.
type Report struct {
	CitiesCreated int
	CitiesSkipped int
	OffersCreated int
	OffersSkipped int
}

func decodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// importManifest loads cities before offers. Entries that already exist are
// skipped, so re-running an import is harmless; any other failure stops it.
func importManifest(ctx context.Context, cities *usecases.CityService, catalog *usecases.CatalogService, m *Manifest) (Report, error) {
	var rep Report

	for i := range m.Cities {
		c := m.Cities[i]
		err := cities.Create(ctx, &c)
		switch {
		case errors.Is(err, domain.ErrDuplicateKey):
			rep.CitiesSkipped++
			slog.Debug("city exists", "name", c.Name)
		case err != nil:
			return rep, fmt.Errorf("city %q: %w", c.Name, err)
		default:
			rep.CitiesCreated++
		}
	}

	for i := range m.Offers {
		o := m.Offers[i]
		err := catalog.Add(ctx, &o)
		switch {
		case errors.Is(err, domain.ErrDuplicateKey):
			rep.OffersSkipped++
			slog.Debug("offer exists", "from", o.DepartureCityID, "to", o.DestinationCityID, "mode", o.Mode)
		case err != nil:
			return rep, fmt.Errorf("offer %d->%d: %w", o.DepartureCityID, o.DestinationCityID, err)
		default:
			rep.OffersCreated++
		}
	}

	return rep, nil
}
