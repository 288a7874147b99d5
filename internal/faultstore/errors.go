package faultstore

import "errors"

// Sentinel errors returned by Registry operations. Callers use errors.Is
// to distinguish them; the control plane adapter maps each to an HTTP
// status code.
var (
	ErrNameExists      = errors.New("faultstore: name already exists")
	ErrCommandOccupied = errors.New("faultstore: command already has a plan")
	ErrInvalid         = errors.New("faultstore: invalid fault plan")
	ErrNotFound        = errors.New("faultstore: fault plan not found")
)
