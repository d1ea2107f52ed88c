// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by sporeid packages:
// measurement input, classification results, history records and
// configuration.
package types

import (
	"fmt"
	"math"
)

// SporeShape is the coarse outline of a spore.
type SporeShape int

const (
	ShapeRound SporeShape = iota
	ShapeOval
	ShapeElongated
)

// WallType counts the layers of the spore wall.
type WallType int

const (
	WallSimple WallType = iota
	WallDouble
	WallTriple
)

// Ornamentation describes the spore surface.
type Ornamentation int

const (
	OrnamentSmooth Ornamentation = iota
	OrnamentGranular
	OrnamentSpiny
	OrnamentReticulate
)

// Habitat is the ecological setting where the specimen was collected.
type Habitat int

const (
	HabitatForest Habitat = iota
	HabitatParamo
	HabitatScrub
	HabitatGrassland
)

// Texture is the dominant soil texture. The prediction service expects
// it as four one-hot columns; the expansion happens in the codec.
type Texture int

const (
	TextureClay Texture = iota
	TextureSand
	TextureLoam
	TextureSilt
)

var textureNames = []string{"clay", "sand", "loam", "silt"}

// String returns the lowercase texture name, or "texture(n)" when out of range.
func (t Texture) String() string {
	if t < 0 || int(t) >= len(textureNames) {
		return fmt.Sprintf("texture(%d)", int(t))
	}
	return textureNames[t]
}

// ParseTexture maps a name such as "loam" to its Texture.
func ParseTexture(s string) (Texture, error) {
	for i, name := range textureNames {
		if name == s {
			return Texture(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown texture %q (want clay, sand, loam or silt)", ErrValidation, s)
}

// MaxGeneticCluster is the highest genetic cluster index the model knows.
const MaxGeneticCluster = 3

// MeasurementInput holds the seventeen model features a user supplies for
// one manual classification. All fields are required; soil chemistry
// values (PH, ConductivityDsM, NitrogenTotalPct) are already standardized.
//
// The json and yaml tags name fields for local files and CLI output only.
// The prediction service's wire names and the texture one-hot columns are
// owned by internal/codec.
type MeasurementInput struct {
	SporeSizeUm   float64       `json:"spore_size_um" yaml:"spore_size_um"`
	SporeShape    SporeShape    `json:"spore_shape" yaml:"spore_shape"`
	WallType      WallType      `json:"wall_type" yaml:"wall_type"`
	Ornamentation Ornamentation `json:"ornamentation" yaml:"ornamentation"`

	// GeneITS is 0.0 (absent) or 1.0 (present).
	GeneITS        float64 `json:"gene_its" yaml:"gene_its"`
	GeneticCluster int     `json:"genetic_cluster" yaml:"genetic_cluster"`
	GCContent      float64 `json:"gc_content" yaml:"gc_content"`

	HabitatType Habitat `json:"habitat_type" yaml:"habitat_type"`
	ElevationM  float64 `json:"elevation_m" yaml:"elevation_m"`
	MeanTempC   float64 `json:"mean_temp_c" yaml:"mean_temp_c"`

	PH               float64 `json:"ph" yaml:"ph"`
	ConductivityDsM  float64 `json:"conductivity_ds_m" yaml:"conductivity_ds_m"`
	NitrogenTotalPct float64 `json:"nitrogen_total_pct" yaml:"nitrogen_total_pct"`
	Texture          Texture `json:"texture" yaml:"texture"`
}

// Validate checks the categorical fields and rejects non-finite numbers.
// It is meant for the input boundary; the codec and client never call it
// and forward whatever they are given.
func (m MeasurementInput) Validate() error {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"spore shape", int(m.SporeShape), int(ShapeElongated)},
		{"wall type", int(m.WallType), int(WallTriple)},
		{"ornamentation", int(m.Ornamentation), int(OrnamentReticulate)},
		{"genetic cluster", m.GeneticCluster, MaxGeneticCluster},
		{"habitat type", int(m.HabitatType), int(HabitatGrassland)},
		{"texture", int(m.Texture), int(TextureSilt)},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return fmt.Errorf("%w: %s %d out of range 0-%d", ErrValidation, c.name, c.value, c.max)
		}
	}

	if m.GeneITS != 0 && m.GeneITS != 1 {
		return fmt.Errorf("%w: gene ITS must be 0 or 1, got %v", ErrValidation, m.GeneITS)
	}

	for _, f := range m.numericFields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrValidation, f.name)
		}
	}
	return nil
}

// Warnings lists values outside the ranges the model was trained on.
// They are accepted but worth telling the user about.
func (m MeasurementInput) Warnings() []string {
	var out []string
	for _, f := range m.numericFields() {
		if f.max <= f.min {
			continue
		}
		if f.value < f.min || f.value > f.max {
			out = append(out, fmt.Sprintf("%s %g outside expected range %g-%g", f.name, f.value, f.min, f.max))
		}
	}
	return out
}

type numericField struct {
	name     string
	value    float64
	min, max float64
}

// numericFields returns the float features; min == max means no expected range.
func (m MeasurementInput) numericFields() []numericField {
	return []numericField{
		{"spore size", m.SporeSizeUm, 50, 300},
		{"gene ITS", m.GeneITS, 0, 0},
		{"GC content", m.GCContent, 35, 60},
		{"elevation", m.ElevationM, 500, 4200},
		{"mean temperature", m.MeanTempC, 3, 25},
		{"pH", m.PH, 0, 0},
		{"conductivity", m.ConductivityDsM, 0, 0},
		{"total nitrogen", m.NitrogenTotalPct, 0, 0},
	}
}
