// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Confidence range of the placeholder photo classifier, [min, max).
const (
	FallbackMinConfidence = 0.75
	FallbackMaxConfidence = 0.99
)

// FallbackLabels is the fixed label set of the placeholder photo classifier.
var FallbackLabels = []string{
	"Amanita muscaria",
	"Boletus edulis",
	"Cantharellus cibarius",
	"Agaricus campestris",
}

// RandomClassifier stands in for on-device image classification on the
// photo path. It picks a label from FallbackLabels and a confidence drawn
// uniformly from [FallbackMinConfidence, FallbackMaxConfidence).
type RandomClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomClassifier returns a RandomClassifier drawing from src, or
// from a randomly seeded source when src is nil.
func NewRandomClassifier(src rand.Source) *RandomClassifier {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomClassifier{rng: rand.New(src)}
}

// Classify returns a label and confidence.
func (r *RandomClassifier) Classify() (string, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := FallbackLabels[r.rng.IntN(len(FallbackLabels))]
	conf := FallbackMinConfidence + r.rng.Float64()*(FallbackMaxConfidence-FallbackMinConfidence)
	if conf >= FallbackMaxConfidence {
		conf = math.Nextafter(FallbackMaxConfidence, 0)
	}
	return label, conf
}
