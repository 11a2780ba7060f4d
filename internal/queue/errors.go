package queue

import "errors"

var (
	// ErrDuplicateExternalID is returned when inserting a record for a title
	// that already has one. The watcher relies on this to keep at most one
	// record per requested title across any number of passes.
	ErrDuplicateExternalID = errors.New("job record already exists for external id")

	// ErrInvalidTransition is returned when a status update does not follow
	// the ordered downloading -> encoding -> done lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a job id has no record.
	ErrNotFound = errors.New("job record not found")
)
