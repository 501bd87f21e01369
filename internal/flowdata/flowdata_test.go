package flowdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

func TestAccessorsMatchShape(t *testing.T) {
	text := NewTextData("hello")
	s, err := text.AsText()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = text.AsNumber()
	assert.ErrorIs(t, err, wferrors.ErrFlowTypeMismatch)
}

func TestAsXSucceedsIffIntoXSucceeds(t *testing.T) {
	num := NewNumberData(42)
	_, asErr := num.AsNumber()
	_, intoErr := num.IntoNumber()
	assert.Equal(t, asErr == nil, intoErr == nil)

	_, asErr = num.AsText()
	_, intoErr = num.IntoText()
	assert.Equal(t, asErr == nil, intoErr == nil)
}

func TestMergeSingleSingle(t *testing.T) {
	a := NewTextData("a")
	b := NewTextData("b")
	merged := Merge(a, b)
	items, err := merged.AsCollection()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Text)
	assert.Equal(t, "b", items[1].Text)
}

func TestMergeCollectionSingle(t *testing.T) {
	xs := NewCollection(NewText("x"), NewText("y"))
	merged := Merge(xs, NewTextData("z"))
	items, err := merged.AsCollection()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "z", items[2].Text)
}

func TestMergeIntoMutatesInPlace(t *testing.T) {
	d := NewTextData("a")
	d.MergeInto(NewTextData("b"))
	items, err := d.AsCollection()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestJSONRoundTripSingle(t *testing.T) {
	original := NewTextData("round-trip")
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded FlowData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original.Kind, decoded.Kind)
	text, err := decoded.AsText()
	require.NoError(t, err)
	assert.Equal(t, "round-trip", text)
}

func TestJSONRoundTripCollection(t *testing.T) {
	original := NewCollection(NewText("a"), NewNumber(2))
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded FlowData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	items, err := decoded.AsCollection()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, KindText, items[0].Kind)
	assert.Equal(t, KindNumber, items[1].Kind)
}

func TestJSONRoundTripFileAndJSON(t *testing.T) {
	file := NewFileData("/tmp/img.png", FileImage)
	raw, err := json.Marshal(file)
	require.NoError(t, err)
	var decoded FlowData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	f, err := decoded.AsFile()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/img.png", f.Path)
	assert.Equal(t, FileImage, f.FileType)

	withJSON := NewJSONData(map[string]interface{}{"a": float64(1)})
	raw, err = json.Marshal(withJSON)
	require.NoError(t, err)
	var decodedJSON FlowData
	require.NoError(t, json.Unmarshal(raw, &decodedJSON))
	v, err := decodedJSON.AsJSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, v)
}

func TestTextsOrCollectionPolymorphic(t *testing.T) {
	single := NewTextData("only")
	assert.Equal(t, []string{"only"}, single.TextsOrCollection())

	collection := NewCollection(NewText("a"), NewNumber(1), NewText("b"))
	assert.Equal(t, []string{"a", "b"}, collection.TextsOrCollection())
}
