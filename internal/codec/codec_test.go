// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sporeid/pkg/types"
)

func sampleInput() types.MeasurementInput {
	return types.MeasurementInput{
		SporeSizeUm:      187.25,
		SporeShape:       types.ShapeElongated,
		WallType:         types.WallSimple,
		Ornamentation:    types.OrnamentReticulate,
		GeneITS:          1,
		GeneticCluster:   3,
		GCContent:        52.123456789,
		HabitatType:      types.HabitatGrassland,
		ElevationM:       2750.5,
		MeanTempC:        8.1,
		PH:               -1.2345678901234567,
		ConductivityDsM:  0.1,
		NitrogenTotalPct: 2.0000000000000004,
		Texture:          types.TextureSand,
	}
}

// --- Encode ---

func TestEncodeFieldSet(t *testing.T) {
	data, err := Encode(sampleInput())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Len(t, raw, 17)
	for _, name := range RequestFields {
		assert.Contains(t, raw, name)
	}
}

func TestEncodeUsesServiceNamesNotStructTags(t *testing.T) {
	data, err := Encode(sampleInput())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, name := range []string{FieldGeneITS, FieldPH, FieldConductivity, FieldTextureClay} {
		assert.Contains(t, raw, name)
	}
	for _, tag := range []string{"gene_its", "ph", "conductivity_ds_m", "texture"} {
		assert.NotContains(t, raw, tag)
	}
}

func TestEncodeIntegerFields(t *testing.T) {
	data, err := Encode(sampleInput())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	tests := []struct {
		field string
		want  string
	}{
		{FieldSporeShape, "2"},
		{FieldWallType, "0"},
		{FieldOrnamentation, "3"},
		{FieldGeneticCluster, "3"},
		{FieldHabitatType, "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(raw[tt.field]), "field %s", tt.field)
	}

	// Numbers, never strings.
	for _, name := range RequestFields {
		assert.False(t, strings.HasPrefix(string(raw[name]), `"`), "field %s encoded as string", name)
	}
}

func TestEncodeTextureOneHot(t *testing.T) {
	tests := []struct {
		texture types.Texture
		want    [4]float64
	}{
		{types.TextureClay, [4]float64{1, 0, 0, 0}},
		{types.TextureSand, [4]float64{0, 1, 0, 0}},
		{types.TextureLoam, [4]float64{0, 0, 1, 0}},
		{types.TextureSilt, [4]float64{0, 0, 0, 1}},
		{types.Texture(9), [4]float64{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.texture.String(), func(t *testing.T) {
			in := sampleInput()
			in.Texture = tt.texture
			data, err := Encode(in)
			require.NoError(t, err)

			var got map[string]float64
			require.NoError(t, json.Unmarshal(data, &got))
			for i, name := range textureFields {
				assert.Equal(t, tt.want[i], got[name], "column %s", name)
			}
		})
	}
}

func TestEncodeDoesNotValidate(t *testing.T) {
	in := sampleInput()
	in.SporeShape = 42
	in.GeneITS = 0.5

	data, err := Encode(in)
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 42.0, got[FieldSporeShape])
	assert.Equal(t, 0.5, got[FieldGeneITS])
}

// --- DecodeRequest ---

func TestRequestRoundTrip(t *testing.T) {
	inputs := []types.MeasurementInput{sampleInput(), {Texture: types.TextureClay}}
	for _, tex := range []types.Texture{types.TextureLoam, types.TextureSilt} {
		in := sampleInput()
		in.Texture = tex
		in.MeanTempC = 1.0 / 3.0
		inputs = append(inputs, in)
	}

	for i, in := range inputs {
		t.Run(fmt.Sprintf("input %d", i), func(t *testing.T) {
			data, err := Encode(in)
			require.NoError(t, err)

			got, err := DecodeRequest(data)
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	base := func() map[string]any {
		data, err := Encode(sampleInput())
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		wantErr error
		wantMsg string
	}{
		{"missing field", func(m map[string]any) { delete(m, FieldPH) }, types.ErrValidation, `"pH"`},
		{"string number", func(m map[string]any) { m[FieldElevation] = "2750" }, types.ErrValidation, `"elevation_m"`},
		{"fractional enum", func(m map[string]any) { m[FieldWallType] = 1.5 }, types.ErrValidation, "must be an integer"},
		{"two textures", func(m map[string]any) { m[FieldTextureClay] = 1.0 }, types.ErrValidation, "both set"},
		{"no texture", func(m map[string]any) { m[FieldTextureSand] = 0.0 }, types.ErrValidation, "none set"},
		{"partial texture", func(m map[string]any) { m[FieldTextureSilt] = 0.5 }, types.ErrValidation, "must be 0 or 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			data, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = DecodeRequest(data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	_, err := DecodeRequest([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, types.ErrEncoding)
}

// TestServerEcho checks that the wire values a server would read back
// from the request are exactly the values that went in.
func TestServerEcho(t *testing.T) {
	in := sampleInput()
	data, err := Encode(in)
	require.NoError(t, err)

	var echoed map[string]float64
	require.NoError(t, json.Unmarshal(data, &echoed))

	assert.Equal(t, in.SporeSizeUm, echoed[FieldSporeSize])
	assert.Equal(t, in.GCContent, echoed[FieldGCContent])
	assert.Equal(t, in.PH, echoed[FieldPH])
	assert.Equal(t, in.NitrogenTotalPct, echoed[FieldNitrogen])
	assert.Equal(t, float64(in.SporeShape), echoed[FieldSporeShape])
}
