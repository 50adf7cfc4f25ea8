// Package fixtures loads listing fixtures from YAML and writes them to a repository.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/models"
)

// Listing is one fixture entry.
type Listing struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Price       float64          `yaml:"price"`
	Amenities   []string         `yaml:"amenities"`
	Status      string           `yaml:"status"`
	Images      []string         `yaml:"images"`
	OwnerID     string           `yaml:"ownerId"`
	Location    *models.GeoPoint `yaml:"location"`
}

// File is the top-level document.
type File struct {
	Listings []Listing `yaml:"listings"`
}

// Load decodes and validates a fixture file. Unknown keys are rejected so typos surface.
func Load(r io.Reader) ([]*models.Listing, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("fixture file is empty")
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]*models.Listing, 0, len(f.Listings))
	var problems []string
	for i, fx := range f.Listings {
		l, err := fx.toModel()
		if err != nil {
			problems = append(problems, fmt.Sprintf("listings[%d]: %v", i, err))
			continue
		}
		out = append(out, l)
	}
	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}
	return out, nil
}

func (fx Listing) toModel() (*models.Listing, error) {
	if strings.TrimSpace(fx.Title) == "" {
		return nil, errors.New("title is required")
	}
	if fx.Price < 0 {
		return nil, errors.New("price must not be negative")
	}
	if fx.OwnerID == "" {
		return nil, errors.New("ownerId is required")
	}
	if len(fx.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}
	status := models.ListingStatus(fx.Status)
	if status == "" {
		status = models.StatusAvailable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", fx.Status)
	}
	amenities := fx.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return &models.Listing{
		Title:       strings.TrimSpace(fx.Title),
		Description: fx.Description,
		Price:       fx.Price,
		Images:      fx.Images,
		Location:    fx.Location,
		Amenities:   amenities,
		Status:      status,
		OwnerID:     fx.OwnerID,
	}, nil
}

// Seed creates each listing in order and returns the new document IDs. It stops at the
// first failure; listings already written stay written.
func Seed(ctx context.Context, repo db.ListingRepository, listings []*models.Listing) ([]string, error) {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		id, err := repo.Create(ctx, l)
		if err != nil {
			return ids, fmt.Errorf("create listing %q: %w", l.Title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
