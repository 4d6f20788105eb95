package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Decode unmarshals a single JSON value from r into v.
//
// It is an error for r to contain anything other than whitespace after the
// value.
func Decode[O ~UnmarshalOption](
	r io.Reader,
	v any,
	options ...O,
) error {
	var opts UnmarshalOptions
	for _, fn := range options {
		fn(&opts)
	}

	dec := json.NewDecoder(r)
	if !opts.AllowUnknownFields {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("json: unexpected data after top-level value")
		}
		return err
	}

	return nil
}

// Unmarshal unmarshals JSON content from data into v.
func Unmarshal[O ~UnmarshalOption](
	data []byte,
	v any,
	options ...O,
) error {
	return Decode(
		bytes.NewReader(data),
		v,
		options...,
	)
}

// UnmarshalOptions is a set of options that control how JSON is unmarshaled.
type UnmarshalOptions struct {
	AllowUnknownFields bool
}

// UnmarshalOption is a function that changes the behavior of JSON unmarshaling.
type UnmarshalOption = func(*UnmarshalOptions)

// AllowUnknownFields is an UnmarshalOption that permits objects to contain
// fields that do not exist in the target type.
func AllowUnknownFields(allow bool) UnmarshalOption {
	return func(opts *UnmarshalOptions) {
		opts.AllowUnknownFields = allow
	}
}
