// Package errdefs defines the error taxonomy shared by the migration engine.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind int

const (
	KindUnknown Kind = iota
	KindDuplicateCollection
	KindDuplicateEdgeCollection
	KindDuplicateIndex
	KindDuplicateGraph
	KindMissingCollection
	KindMissingEdgeCollection
	KindMissingIndex
	KindMissingGraph
	KindInvalidFileName
	KindNoMigrations
	KindIO
	KindParsing
	KindInvalidParameter
	KindInit
	KindDatabase
)

var kindNames = map[Kind]string{
	KindUnknown:                 "Unknown Error",
	KindDuplicateCollection:     "Duplicate Collection",
	KindDuplicateEdgeCollection: "Duplicate Edge Collection",
	KindDuplicateIndex:          "Duplicate Index",
	KindDuplicateGraph:          "Duplicate Graph",
	KindMissingCollection:       "Missing Collection",
	KindMissingEdgeCollection:   "Missing Edge Collection",
	KindMissingIndex:            "Missing Index",
	KindMissingGraph:            "Missing Graph",
	KindInvalidFileName:         "Invalid File Name",
	KindNoMigrations:            "No Migrations",
	KindIO:                      "I/O Error",
	KindParsing:                 "Parsing Error",
	KindInvalidParameter:        "Invalid Parameter",
	KindInit:                    "Initialization Error",
	KindDatabase:                "Database Error",
}

// String returns the human readable kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the concrete error type returned by the engine.
type Error struct {
	Kind       Kind
	Name       string
	Collection string
	FileName   string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDuplicateIndex, KindMissingIndex:
		if e.Collection == "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Name)
		}
		return fmt.Sprintf("%s: %s on collection %s", e.Kind, e.Name, e.Collection)
	case KindDuplicateCollection, KindDuplicateEdgeCollection, KindDuplicateGraph,
		KindMissingCollection, KindMissingEdgeCollection, KindMissingGraph:
		return fmt.Sprintf("%s: %s", e.Kind, e.Name)
	case KindInvalidFileName:
		return fmt.Sprintf("%s: %s", e.Kind, e.FileName)
	case KindNoMigrations:
		return "no migrations found"
	case KindInvalidParameter:
		return fmt.Sprintf("invalid parameter: %s (%s)", e.Name, e.Message)
	case KindInit:
		return fmt.Sprintf("failed to initialize %s (%s)", e.Name, e.Message)
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, which lets the kind
// sentinels below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrDuplicateCollection     = &Error{Kind: KindDuplicateCollection}
	ErrDuplicateEdgeCollection = &Error{Kind: KindDuplicateEdgeCollection}
	ErrDuplicateIndex          = &Error{Kind: KindDuplicateIndex}
	ErrDuplicateGraph          = &Error{Kind: KindDuplicateGraph}
	ErrMissingCollection       = &Error{Kind: KindMissingCollection}
	ErrMissingEdgeCollection   = &Error{Kind: KindMissingEdgeCollection}
	ErrMissingIndex            = &Error{Kind: KindMissingIndex}
	ErrMissingGraph            = &Error{Kind: KindMissingGraph}
	ErrInvalidFileName         = &Error{Kind: KindInvalidFileName}
	ErrNoMigrations            = &Error{Kind: KindNoMigrations}
	ErrIO                      = &Error{Kind: KindIO}
	ErrParsing                 = &Error{Kind: KindParsing}
	ErrInvalidParameter        = &Error{Kind: KindInvalidParameter}
	ErrInit                    = &Error{Kind: KindInit}
	ErrDatabase                = &Error{Kind: KindDatabase}
)

// DuplicateCollection reports a create targeting an already tracked collection.
func DuplicateCollection(name string) error {
	return &Error{Kind: KindDuplicateCollection, Name: name}
}

// DuplicateEdgeCollection reports a create targeting an already tracked edge collection.
func DuplicateEdgeCollection(name string) error {
	return &Error{Kind: KindDuplicateEdgeCollection, Name: name}
}

// DuplicateIndex reports a create targeting an already tracked (collection, name) pair.
func DuplicateIndex(collection, name string) error {
	return &Error{Kind: KindDuplicateIndex, Name: name, Collection: collection}
}

// DuplicateGraph reports a create targeting an already tracked graph.
func DuplicateGraph(name string) error {
	return &Error{Kind: KindDuplicateGraph, Name: name}
}

// MissingCollection reports a delete targeting an untracked collection.
func MissingCollection(name string) error {
	return &Error{Kind: KindMissingCollection, Name: name}
}

// MissingEdgeCollection reports a delete targeting an untracked edge collection.
func MissingEdgeCollection(name string) error {
	return &Error{Kind: KindMissingEdgeCollection, Name: name}
}

// MissingIndex reports a delete targeting an untracked (collection, name) pair.
func MissingIndex(collection, name string) error {
	return &Error{Kind: KindMissingIndex, Name: name, Collection: collection}
}

// MissingGraph reports a delete targeting an untracked graph.
func MissingGraph(name string) error {
	return &Error{Kind: KindMissingGraph, Name: name}
}

// InvalidFileName reports a migration file name that does not parse.
func InvalidFileName(fileName string) error {
	return &Error{Kind: KindInvalidFileName, FileName: fileName}
}

// NoMigrations reports an empty migrations directory.
func NoMigrations() error {
	return &Error{Kind: KindNoMigrations}
}

// InvalidParameter reports a bad user supplied value.
func InvalidParameter(name, message string) error {
	return &Error{Kind: KindInvalidParameter, Name: name, Message: message}
}

// Init reports a missing or unusable startup input.
func Init(item, message string) error {
	return &Error{Kind: KindInit, Name: item, Message: message}
}

// IO wraps a file system failure.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Err: err}
}

// Parsing wraps a structured decode failure for the given file.
func Parsing(fileName string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindParsing, FileName: fileName, Message: fmt.Sprintf("%s: %v", fileName, err), Err: err}
}

// Database wraps a live database failure.
func Database(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDatabase {
		return err
	}
	return &Error{Kind: KindDatabase, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsDuplicate reports whether err is one of the Duplicate kinds.
func IsDuplicate(err error) bool {
	switch KindOf(err) {
	case KindDuplicateCollection, KindDuplicateEdgeCollection, KindDuplicateIndex, KindDuplicateGraph:
		return true
	}
	return false
}

// IsMissing reports whether err is one of the Missing kinds.
func IsMissing(err error) bool {
	switch KindOf(err) {
	case KindMissingCollection, KindMissingEdgeCollection, KindMissingIndex, KindMissingGraph:
		return true
	}
	return false
}
