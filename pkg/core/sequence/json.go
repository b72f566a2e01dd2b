// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sequence

import (
	"bytes"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// FromJSON parses a JSON document into an Element.
//
// JSON arrays become sequences and JSON numbers become scalars. Strings, objects, booleans and null become
// unsupported Elements (with TypeName "string", "object", "boolean" and "null" respectively).
//
// Arrays are decoded lazily, one nesting level at a time, directly from data (which must not be modified
// while the Element is in use): a malformed nested array is only reported when it is reached, through
// Sequence.At. A malformed top-level document, or one with content after the top-level value, is reported
// immediately.
func FromJSON(data []byte) (Element, error) {
	value, dataType, offset, err := jsonparser.Get(data)
	if err != nil {
		return Element{}, errors.Wrap(err, "failed to parse JSON document")
	}
	if trailing := bytes.TrimSpace(data[offset:]); len(trailing) > 0 {
		return Element{}, errors.Errorf("failed to parse JSON document: unexpected content %q after the top-level value",
			truncate(trailing))
	}
	elem, err := fromJSONValue(value, dataType)
	if err != nil {
		return Element{}, errors.WithMessage(err, "failed to parse JSON document")
	}
	return elem, nil
}

// jsonItem is an undecoded array element.
type jsonItem struct {
	value    []byte
	dataType jsonparser.ValueType
}

// jsonSequence is a Sequence over the elements of one JSON array.
type jsonSequence struct {
	items []jsonItem
}

// parseJSONArray splits the JSON array in data into its (still undecoded) items.
func parseJSONArray(data []byte) (*jsonSequence, error) {
	seq := &jsonSequence{}
	var itemErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = err
			return
		}
		seq.items = append(seq.items, jsonItem{value: value, dataType: dataType})
	})
	if err == nil {
		err = itemErr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "malformed JSON array %q", truncate(data))
	}
	return seq, nil
}

// Len implements Sequence.
func (s *jsonSequence) Len() int { return len(s.items) }

// At implements Sequence.
func (s *jsonSequence) At(i int) (Element, error) {
	if i < 0 || i >= len(s.items) {
		return Element{}, errors.Errorf("sequence index %d out of range for length %d", i, len(s.items))
	}
	item := s.items[i]
	return fromJSONValue(item.value, item.dataType)
}

func fromJSONValue(value []byte, dataType jsonparser.ValueType) (Element, error) {
	switch dataType {
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return Element{}, errors.Wrapf(err, "malformed JSON number %q", truncate(value))
		}
		return Scalar(f), nil
	case jsonparser.Array:
		seq, err := parseJSONArray(value)
		if err != nil {
			return Element{}, err
		}
		return Nested(seq), nil
	case jsonparser.String:
		return Unsupported("string"), nil
	case jsonparser.Object:
		return Unsupported("object"), nil
	case jsonparser.Boolean:
		return Unsupported("boolean"), nil
	case jsonparser.Null:
		return Unsupported("null"), nil
	default:
		return Element{}, errors.Errorf("unknown JSON value %q", truncate(value))
	}
}

// truncate limits JSON fragments quoted in error messages.
func truncate(data []byte) string {
	const maxLen = 32
	if len(data) <= maxLen {
		return string(data)
	}
	return string(data[:maxLen]) + "..."
}
