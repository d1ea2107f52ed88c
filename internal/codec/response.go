// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"fmt"

	"github.com/antonholmquist/jason"

	"github.com/pdiddy/sporeid/pkg/types"
)

// Wire field names in the POST /predict and GET /familias responses.
const (
	FieldFamily         = "familia_predicha"
	FieldConfidence     = "confianza"
	FieldConfidencePct  = "confianza_pct"
	FieldTop3           = "top3"
	FieldTopFamily      = "familia"
	FieldTopProbability = "probabilidad"
	FieldFamilies       = "familias"
)

// DecodeResponse turns a 200 response body into a Success. Missing or
// mistyped fields produce a Failure of kind encoding naming the field;
// DecodeResponse never panics and never returns an error value.
func DecodeResponse(body []byte) types.ClassificationResult {
	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return encodingFailure("parsing response: %v", err)
	}

	family, err := obj.GetString(FieldFamily)
	if err != nil {
		return encodingFailure("field %q: %v", FieldFamily, err)
	}
	confidence, err := obj.GetFloat64(FieldConfidence)
	if err != nil {
		return encodingFailure("field %q: %v", FieldConfidence, err)
	}
	pct, err := obj.GetString(FieldConfidencePct)
	if err != nil {
		return encodingFailure("field %q: %v", FieldConfidencePct, err)
	}

	top3, err := decodeTop3(obj)
	if err != nil {
		return encodingFailure("%v", err)
	}

	return types.Success{
		Family:                 family,
		Confidence:             confidence,
		ConfidencePercentLabel: pct,
		Top3:                   top3,
	}
}

// decodeTop3 reads the optional ranking. An absent or null field yields an
// empty slice; the server's order and length are kept as sent.
func decodeTop3(obj *jason.Object) ([]types.FamilyProbability, error) {
	v, ok := obj.Map()[FieldTop3]
	if !ok || v.Null() == nil {
		return []types.FamilyProbability{}, nil
	}

	items, err := obj.GetObjectArray(FieldTop3)
	if err != nil {
		return nil, fmt.Errorf("field %q: %v", FieldTop3, err)
	}

	out := make([]types.FamilyProbability, 0, len(items))
	for i, item := range items {
		name, err := item.GetString(FieldTopFamily)
		if err != nil {
			return nil, fmt.Errorf("field %s[%d].%s: %v", FieldTop3, i, FieldTopFamily, err)
		}
		p, err := item.GetFloat64(FieldTopProbability)
		if err != nil {
			return nil, fmt.Errorf("field %s[%d].%s: %v", FieldTop3, i, FieldTopProbability, err)
		}
		out = append(out, types.FamilyProbability{Family: name, Probability: p})
	}
	return out, nil
}

// DecodeFamilies parses the GET /familias body.
func DecodeFamilies(body []byte) ([]string, error) {
	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing families: %v", types.ErrEncoding, err)
	}
	families, err := obj.GetStringArray(FieldFamilies)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", types.ErrEncoding, FieldFamilies, err)
	}
	return families, nil
}

func encodingFailure(format string, args ...any) types.Failure {
	return types.Failure{
		Message: "decoding response: " + fmt.Sprintf(format, args...),
		Kind:    types.FailureEncoding,
	}
}
