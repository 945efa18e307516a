// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"fmt"
)

// ConversionError reports a structural problem that prevents a conversion
// from running at all. Unparsable cells are never reported this way.
type ConversionError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies conversion errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeColumnNotFound the selected column is not in the table.
	ErrorTypeColumnNotFound
	// ErrorTypeEmptySelection a column selection was left blank.
	ErrorTypeEmptySelection
	// ErrorTypeInvalidOption an option is out of range.
	ErrorTypeInvalidOption
	// ErrorTypeMalformedTable rows and header disagree.
	ErrorTypeMalformedTable
	// ErrorTypeUnsupportedFormat the file extension has no reader or writer.
	ErrorTypeUnsupportedFormat
)

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func isType(err error, t ErrorType) bool {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return convErr.Type == t
	}

	return false
}

// IsColumnNotFound reports whether err is caused by an unknown column.
func IsColumnNotFound(err error) bool {
	return isType(err, ErrorTypeColumnNotFound)
}

func columnNotFound(role, name string, columns []string) *ConversionError {
	return &ConversionError{
		Type:    ErrorTypeColumnNotFound,
		Message: fmt.Sprintf("%s column %q not found (available: %q)", role, name, columns),
	}
}
