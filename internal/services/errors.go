package services

import "errors"

// ErrDatasetNotLoaded is returned when a service is built without records.
var ErrDatasetNotLoaded = errors.New("dataset not loaded")
