package model

import "errors"

var (
	// ErrNotFound is returned when a node id does not exist in a tree.
	ErrNotFound = errors.New("node not found")
	// ErrMalformedNode is returned for a node that has both url and children, or neither.
	ErrMalformedNode = errors.New("malformed node")
)
