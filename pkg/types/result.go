// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error taxonomy for the classification path. Encoding, transport and
// server errors never leave the client as errors; they are folded into a
// Failure. Validation errors are raised at the input boundary only.
var (
	ErrEncoding   = errors.New("encoding error")
	ErrTransport  = errors.New("transport error")
	ErrServer     = errors.New("server error")
	ErrValidation = errors.New("validation error")
)

// ClassificationResult is either a Success or a Failure. Callers switch
// on the concrete type:
//
//	switch r := res.(type) {
//	case types.Success:
//	case types.Failure:
//	}
type ClassificationResult interface {
	isClassificationResult()
}

// FamilyProbability is one ranked candidate family.
type FamilyProbability struct {
	Family      string  `json:"family" yaml:"family"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// Success is a decoded prediction. Confidence is passed through from the
// server unclamped; the server reports values in [0, 1].
type Success struct {
	Family                 string              `json:"family" yaml:"family"`
	Confidence             float64             `json:"confidence" yaml:"confidence"`
	ConfidencePercentLabel string              `json:"confidence_percent_label" yaml:"confidence_percent_label"`
	Top3                   []FamilyProbability `json:"top3" yaml:"top3"`
}

// FailureKind records which part of the round trip failed.
type FailureKind string

const (
	FailureEncoding  FailureKind = "encoding"
	FailureTransport FailureKind = "transport"
	FailureServer    FailureKind = "server"
)

// Failure is an expected, user-presentable classification outcome.
type Failure struct {
	Message string      `json:"message" yaml:"message"`
	Kind    FailureKind `json:"kind" yaml:"kind"`
}

func (Success) isClassificationResult() {}
func (Failure) isClassificationResult() {}

// Unwrap maps the failure kind back to its sentinel so errors.Is works
// on a Failure used as an error.
func (f Failure) Unwrap() error {
	switch f.Kind {
	case FailureEncoding:
		return ErrEncoding
	case FailureTransport:
		return ErrTransport
	case FailureServer:
		return ErrServer
	default:
		return nil
	}
}

func (f Failure) Error() string { return f.Message }
