// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec maps measurement input and classification results to and
// from the JSON wire format of the prediction service.
//
// Wire field names are fixed by the service and differ from the Go field
// names. Soil texture is a single enum in memory and four one-hot columns
// on the wire.
package codec

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/antonholmquist/jason"

	"github.com/pdiddy/sporeid/pkg/types"
)

// Wire field names for POST /predict.
const (
	FieldSporeSize      = "spore_size_um"
	FieldSporeShape     = "spore_shape"
	FieldWallType       = "wall_type"
	FieldOrnamentation  = "ornamentation"
	FieldGeneITS        = "gene_ITS"
	FieldGeneticCluster = "genetic_cluster"
	FieldGCContent      = "gc_content"
	FieldHabitatType    = "habitat_type"
	FieldElevation      = "elevation_m"
	FieldMeanTemp       = "mean_temp_c"
	FieldPH             = "pH"
	FieldConductivity   = "conductividad_ds_m"
	FieldNitrogen       = "nitrogeno_total_pct"
	FieldTextureClay    = "textura_Arcillosa"
	FieldTextureSand    = "textura_Arenosa"
	FieldTextureLoam    = "textura_Franca"
	FieldTextureSilt    = "textura_Limosa"
)

// RequestFields lists the request fields in the column order the model
// was trained with.
var RequestFields = []string{
	FieldSporeSize, FieldSporeShape, FieldWallType, FieldOrnamentation,
	FieldGeneITS, FieldGeneticCluster, FieldGCContent, FieldHabitatType,
	FieldElevation, FieldMeanTemp, FieldPH, FieldConductivity,
	FieldNitrogen, FieldTextureClay, FieldTextureSand,
	FieldTextureLoam, FieldTextureSilt,
}

// textureFields is indexed by types.Texture.
var textureFields = [4]string{FieldTextureClay, FieldTextureSand, FieldTextureLoam, FieldTextureSilt}

// wireRequest is the POST /predict body. Integer-typed features stay
// integers so they encode as JSON integers.
type wireRequest struct {
	SporeSizeUm      float64 `json:"spore_size_um"`
	SporeShape       int     `json:"spore_shape"`
	WallType         int     `json:"wall_type"`
	Ornamentation    int     `json:"ornamentation"`
	GeneITS          float64 `json:"gene_ITS"`
	GeneticCluster   int     `json:"genetic_cluster"`
	GCContent        float64 `json:"gc_content"`
	HabitatType      int     `json:"habitat_type"`
	ElevationM       float64 `json:"elevation_m"`
	MeanTempC        float64 `json:"mean_temp_c"`
	PH               float64 `json:"pH"`
	ConductivityDsM  float64 `json:"conductividad_ds_m"`
	NitrogenTotalPct float64 `json:"nitrogeno_total_pct"`
	TextureClay      float64 `json:"textura_Arcillosa"`
	TextureSand      float64 `json:"textura_Arenosa"`
	TextureLoam      float64 `json:"textura_Franca"`
	TextureSilt      float64 `json:"textura_Limosa"`
}

// Encode returns the POST /predict body for in. The input is not
// validated; an out-of-range texture encodes as four zero columns.
func Encode(in types.MeasurementInput) ([]byte, error) {
	oneHot := [4]float64{}
	if in.Texture >= 0 && int(in.Texture) < len(oneHot) {
		oneHot[in.Texture] = 1
	}

	req := wireRequest{
		SporeSizeUm:      in.SporeSizeUm,
		SporeShape:       int(in.SporeShape),
		WallType:         int(in.WallType),
		Ornamentation:    int(in.Ornamentation),
		GeneITS:          in.GeneITS,
		GeneticCluster:   in.GeneticCluster,
		GCContent:        in.GCContent,
		HabitatType:      int(in.HabitatType),
		ElevationM:       in.ElevationM,
		MeanTempC:        in.MeanTempC,
		PH:               in.PH,
		ConductivityDsM:  in.ConductivityDsM,
		NitrogenTotalPct: in.NitrogenTotalPct,
		TextureClay:      oneHot[types.TextureClay],
		TextureSand:      oneHot[types.TextureSand],
		TextureLoam:      oneHot[types.TextureLoam],
		TextureSilt:      oneHot[types.TextureSilt],
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", types.ErrEncoding, err)
	}
	return data, nil
}

// DecodeRequest parses a POST /predict body back into a MeasurementInput.
// Every field is required. Integer features accept integral numbers
// only, and the texture columns must be one-hot; violations wrap
// types.ErrValidation, malformed JSON wraps types.ErrEncoding.
func DecodeRequest(body []byte) (types.MeasurementInput, error) {
	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return types.MeasurementInput{}, fmt.Errorf("%w: parsing request: %v", types.ErrEncoding, err)
	}

	vals := make(map[string]float64, len(RequestFields))
	for _, name := range RequestFields {
		v, err := obj.GetFloat64(name)
		if err != nil {
			return types.MeasurementInput{}, fmt.Errorf("%w: field %q: %v", types.ErrValidation, name, err)
		}
		vals[name] = v
	}

	ints := make(map[string]int)
	for _, name := range []string{FieldSporeShape, FieldWallType, FieldOrnamentation, FieldGeneticCluster, FieldHabitatType} {
		v := vals[name]
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return types.MeasurementInput{}, fmt.Errorf("%w: field %q must be an integer, got %v", types.ErrValidation, name, v)
		}
		ints[name] = int(v)
	}

	texture := types.Texture(-1)
	for i, name := range textureFields {
		switch vals[name] {
		case 0:
		case 1:
			if texture >= 0 {
				return types.MeasurementInput{}, fmt.Errorf("%w: texture columns must be one-hot, %q and %q both set", types.ErrValidation, textureFields[texture], name)
			}
			texture = types.Texture(i)
		default:
			return types.MeasurementInput{}, fmt.Errorf("%w: texture column %q must be 0 or 1, got %v", types.ErrValidation, name, vals[name])
		}
	}
	if texture < 0 {
		return types.MeasurementInput{}, fmt.Errorf("%w: texture columns must be one-hot, none set", types.ErrValidation)
	}

	return types.MeasurementInput{
		SporeSizeUm:      vals[FieldSporeSize],
		SporeShape:       types.SporeShape(ints[FieldSporeShape]),
		WallType:         types.WallType(ints[FieldWallType]),
		Ornamentation:    types.Ornamentation(ints[FieldOrnamentation]),
		GeneITS:          vals[FieldGeneITS],
		GeneticCluster:   ints[FieldGeneticCluster],
		GCContent:        vals[FieldGCContent],
		HabitatType:      types.Habitat(ints[FieldHabitatType]),
		ElevationM:       vals[FieldElevation],
		MeanTempC:        vals[FieldMeanTemp],
		PH:               vals[FieldPH],
		ConductivityDsM:  vals[FieldConductivity],
		NitrogenTotalPct: vals[FieldNitrogen],
		Texture:          texture,
	}, nil
}
