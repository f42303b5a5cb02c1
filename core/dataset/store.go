package dataset

import (
	"context"
	"errors"

	"github.com/pun33th45/spotmate/core/model"
)

// ErrNotFound signals that the backing dataset does not exist yet.
var ErrNotFound = errors.New("dataset: not found")

// Store persists the flat occupancy table. Save replaces the whole
// table; Append adds rows collected between training rounds.
type Store interface {
	Load(ctx context.Context) ([]model.OccupancyRecord, error)
	Save(ctx context.Context, records []model.OccupancyRecord) error
	Append(ctx context.Context, rec model.OccupancyRecord) error
}
