// Package flowdata implements the tagged-union payload exchanged between
// graph nodes (FlowData) and the envelope a node's core_execute returns
// (FlowOutput).
package flowdata

import (
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// Kind discriminates the shape a FlowData value currently holds.
type Kind string

const (
	KindText       Kind = "Text"
	KindNumber     Kind = "Number"
	KindFile       Kind = "File"
	KindJson       Kind = "Json"
	KindCollection Kind = "Collection"
)

// FileType enumerates the media kinds a File single can carry.
type FileType string

const (
	FileImage FileType = "Image"
	FileAudio FileType = "Audio"
	FileVideo FileType = "Video"
)

// File is the payload of a File single.
type File struct {
	Path     string   `json:"path"`
	FileType FileType `json:"file_type"`
}

// Single is one of Text, Number, File, or Json. Exactly one field is
// meaningful, selected by Kind.
type Single struct {
	Kind Kind
	Text string
	Num  float64
	File File
	JSON interface{}
}

func NewText(s string) Single   { return Single{Kind: KindText, Text: s} }
func NewNumber(n float64) Single { return Single{Kind: KindNumber, Num: n} }
func NewFileSingle(path string, ft FileType) Single {
	return Single{Kind: KindFile, File: File{Path: path, FileType: ft}}
}
func NewJSON(v interface{}) Single { return Single{Kind: KindJson, JSON: v} }

// FlowData is either a single value or an ordered collection of singles.
type FlowData struct {
	Kind       Kind
	Value      Single   // meaningful when Kind != KindCollection
	Collection []Single // meaningful when Kind == KindCollection
}

// NewTextData builds a Single(Text(...)) FlowData.
func NewTextData(s string) FlowData { return FlowData{Kind: KindText, Value: NewText(s)} }

// NewNumberData builds a Single(Number(...)) FlowData.
func NewNumberData(n float64) FlowData { return FlowData{Kind: KindNumber, Value: NewNumber(n)} }

// NewFileData builds a Single(File(...)) FlowData.
func NewFileData(path string, ft FileType) FlowData {
	return FlowData{Kind: KindFile, Value: NewFileSingle(path, ft)}
}

// NewJSONData builds a Single(Json(...)) FlowData.
func NewJSONData(v interface{}) FlowData { return FlowData{Kind: KindJson, Value: NewJSON(v)} }

// NewCollection builds a Collection FlowData from an ordered sequence of singles.
func NewCollection(items ...Single) FlowData {
	return FlowData{Kind: KindCollection, Collection: items}
}

// IsCollection reports whether the value is a Collection rather than a Single.
func (d FlowData) IsCollection() bool { return d.Kind == KindCollection }

// AsText returns the text value, failing FlowTypeMismatch if the shape is not Single(Text).
func (d FlowData) AsText() (string, error) {
	if d.Kind != KindText {
		return "", wferrors.FlowTypeMismatch(string(KindText), string(d.Kind))
	}
	return d.Value.Text, nil
}

// AsNumber returns the numeric value, failing FlowTypeMismatch if the shape is not Single(Number).
func (d FlowData) AsNumber() (float64, error) {
	if d.Kind != KindNumber {
		return 0, wferrors.FlowTypeMismatch(string(KindNumber), string(d.Kind))
	}
	return d.Value.Num, nil
}

// AsFile returns the file value, failing FlowTypeMismatch if the shape is not Single(File).
func (d FlowData) AsFile() (File, error) {
	if d.Kind != KindFile {
		return File{}, wferrors.FlowTypeMismatch(string(KindFile), string(d.Kind))
	}
	return d.Value.File, nil
}

// AsJSON returns the structured value, failing FlowTypeMismatch if the shape is not Single(Json).
func (d FlowData) AsJSON() (interface{}, error) {
	if d.Kind != KindJson {
		return nil, wferrors.FlowTypeMismatch(string(KindJson), string(d.Kind))
	}
	return d.Value.JSON, nil
}

// AsCollection returns the items of a Collection, failing FlowTypeMismatch otherwise.
func (d FlowData) AsCollection() ([]Single, error) {
	if d.Kind != KindCollection {
		return nil, wferrors.FlowTypeMismatch(string(KindCollection), string(d.Kind))
	}
	return d.Collection, nil
}

// IntoText consumes the value as text; identical contract to AsText since
// FlowData here carries no borrow semantics worth distinguishing in Go.
func (d FlowData) IntoText() (string, error) { return d.AsText() }

// IntoNumber consumes the value as a number.
func (d FlowData) IntoNumber() (float64, error) { return d.AsNumber() }

// IntoFile consumes the value as a file.
func (d FlowData) IntoFile() (File, error) { return d.AsFile() }

// IntoCollection consumes the value as a collection.
func (d FlowData) IntoCollection() ([]Single, error) { return d.AsCollection() }

// asSingles promotes a Single-kind FlowData to a one-element []Single, or
// returns a copy of the backing slice if it is already a Collection.
func (d FlowData) asSingles() []Single {
	if d.Kind == KindCollection {
		out := make([]Single, len(d.Collection))
		copy(out, d.Collection)
		return out
	}
	return []Single{d.Value}
}

// Merge produces a Collection by concatenation: singles are promoted to
// one-element collections before concatenating.
func Merge(a, b FlowData) FlowData {
	return FlowData{Kind: KindCollection, Collection: append(a.asSingles(), b.asSingles()...)}
}

// MergeInto merges other into d in place and returns d, mirroring the
// mutable variant of the original merge contract.
func (d *FlowData) MergeInto(other FlowData) *FlowData {
	merged := Merge(*d, other)
	*d = merged
	return d
}

// TextsOrCollection extracts text values polymorphically: a Single(Text)
// yields a one-element slice, a Collection yields every Text member it holds.
func (d FlowData) TextsOrCollection() []string {
	singles := d.asSingles()
	out := make([]string, 0, len(singles))
	for _, s := range singles {
		if s.Kind == KindText {
			out = append(out, s.Text)
		}
	}
	return out
}

// NumbersOrCollection extracts numeric values polymorphically, mirroring TextsOrCollection.
func (d FlowData) NumbersOrCollection() []float64 {
	singles := d.asSingles()
	out := make([]float64, 0, len(singles))
	for _, s := range singles {
		if s.Kind == KindNumber {
			out = append(out, s.Num)
		}
	}
	return out
}

// wireSingle is the JSON wire shape from spec.md §6, used for both forms:
// { "type": "Text"|"Number"|"File"|"Json", "value": ... } for singles, and
// { "type": "Collection", "value": [ single, ... ] } for collections.
type wireSingle struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (s Single) marshalValue() (json.RawMessage, error) {
	switch s.Kind {
	case KindText:
		return json.Marshal(s.Text)
	case KindNumber:
		return json.Marshal(s.Num)
	case KindFile:
		return json.Marshal(s.File)
	case KindJson:
		return json.Marshal(s.JSON)
	default:
		return nil, wferrors.Serialization("flowdata single", wferrors.FlowTypeMismatch("single", string(s.Kind)))
	}
}

// MarshalJSON implements the tagged-union wire form for a Single.
func (s Single) MarshalJSON() ([]byte, error) {
	value, err := s.marshalValue()
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireSingle{Type: s.Kind, Value: value})
}

// UnmarshalJSON implements the tagged-union wire form for a Single.
func (s *Single) UnmarshalJSON(b []byte) error {
	var w wireSingle
	if err := json.Unmarshal(b, &w); err != nil {
		return wferrors.Serialization("flowdata single", err)
	}
	s.Kind = w.Type
	switch w.Type {
	case KindText:
		return json.Unmarshal(w.Value, &s.Text)
	case KindNumber:
		return json.Unmarshal(w.Value, &s.Num)
	case KindFile:
		return json.Unmarshal(w.Value, &s.File)
	case KindJson:
		return json.Unmarshal(w.Value, &s.JSON)
	default:
		return wferrors.Serialization("flowdata single", wferrors.FlowTypeMismatch("single", string(w.Type)))
	}
}

// MarshalJSON implements the tagged-union wire form for FlowData.
func (d FlowData) MarshalJSON() ([]byte, error) {
	if d.Kind == KindCollection {
		value, err := json.Marshal(d.Collection)
		if err != nil {
			return nil, wferrors.Serialization("flowdata collection", err)
		}
		return json.Marshal(wireSingle{Type: KindCollection, Value: value})
	}
	return json.Marshal(d.Value)
}

// UnmarshalJSON implements the tagged-union wire form for FlowData.
func (d *FlowData) UnmarshalJSON(b []byte) error {
	var w wireSingle
	if err := json.Unmarshal(b, &w); err != nil {
		return wferrors.Serialization("flowdata", err)
	}
	if w.Type == KindCollection {
		var items []Single
		if err := json.Unmarshal(w.Value, &items); err != nil {
			return wferrors.Serialization("flowdata collection", err)
		}
		d.Kind = KindCollection
		d.Collection = items
		return nil
	}
	var single Single
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	d.Kind = single.Kind
	d.Value = single
	return nil
}
