// Package store persists saved dashboard views and dataset snapshots.
package store

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quakeboard/internal/geo"
	"github.com/sells-group/quakeboard/internal/model"
)

// ErrNotFound is returned (wrapped) when a view does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrDuplicateName is returned (wrapped) when a view name is already taken.
var ErrDuplicateName = eris.New("store: view name already exists")

// ErrInvalidName is returned (wrapped) when a view name is empty or too long.
var ErrInvalidName = eris.New("store: invalid view name")

// Store defines the persistence interface for saved views.
type Store interface {
	// Views
	CreateView(ctx context.Context, name string, spec model.FilterSpec) (*model.View, error)
	GetView(ctx context.Context, id string) (*model.View, error)
	ListViews(ctx context.Context) ([]model.View, error)
	DeleteView(ctx context.Context, id string) error

	// SaveSnapshot replaces the stored copy of the dataset.
	SaveSnapshot(ctx context.Context, ds *model.Dataset) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return eris.Is(err, ErrNotFound)
}

// IsInvalidName reports whether err wraps ErrInvalidName.
func IsInvalidName(err error) bool {
	return eris.Is(err, ErrInvalidName)
}

// IsDuplicateName reports whether err wraps ErrDuplicateName.
func IsDuplicateName(err error) bool {
	return eris.Is(err, ErrDuplicateName)
}

// snapshotColumns is the column order of the quake_records table.
var snapshotColumns = []string{
	"seq", "city", "name_plate", "year", "month", "date",
	"longitude", "latitude", "location", "count_quakes", "magnitude_mean", "is_prediction",
}

// snapshotRow flattens r for insertion. seq preserves dataset order and
// location is the EWKB point, or NULL for invalid coordinates.
func snapshotRow(seq int, r model.Record) ([]any, error) {
	var date any
	if !r.Date.IsZero() {
		date = r.Date
	}
	location, err := geo.EncodeEWKB(r)
	if err != nil {
		return nil, eris.Wrapf(err, "store: snapshot row %d", seq)
	}
	return []any{
		seq, r.City, r.NamePlate, r.Year, r.Month, date,
		r.Longitude, r.Latitude, location, r.CountQuakes.Ptr(), r.MagnitudeMean.Ptr(), r.IsPrediction,
	}, nil
}

// MaxViewNameLength is the longest view name accepted, in characters.
const MaxViewNameLength = 200

func validateViewName(name string) error {
	if name == "" {
		return eris.Wrap(ErrInvalidName, "store: view name is required")
	}
	if utf8.RuneCountInString(name) > MaxViewNameLength {
		return eris.Wrapf(ErrInvalidName, "store: view name exceeds %d characters", MaxViewNameLength)
	}
	return nil
}
