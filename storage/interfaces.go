package storage

import "greymarket-pipeline/models"

// TableLoader is the interface any input backend must satisfy.
type TableLoader interface {
	Load() (*models.RawTable, error)
}

// TableWriter is the interface for persisting the cleaned dataset.
type TableWriter interface {
	Write(ds *models.Dataset) error
}

var (
	_ TableLoader = (*CSVReader)(nil)
	_ TableWriter = (*CSVWriter)(nil)
)
