// Package queue persists job records in SQLite and enforces their lifecycle.
//
// A record tracks one requested title from transfer submission through
// encoding to relocation. The external id is unique across all records so
// the watcher never submits the same title twice; UpdateStatus is the only
// mutation after insert and rejects anything other than the ordered
// downloading -> encoding -> done advance. Records are never deleted by the
// pipeline; they double as the dedup index and an audit trail.
//
// Both loops read the store concurrently; only the encoder mutates, one
// record at a time, so no multi-record transactions are needed.
package queue
