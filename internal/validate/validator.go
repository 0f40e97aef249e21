// Package validate decides whether a document pertains to a named
// jurisdiction. It combines fixed-prompt LLM validators, a length-weighted
// page vote, and a cheap n-gram heuristic into composite location checks.
package validate

import (
	"context"
	"strings"

	"github.com/dgallion1/ordvet/internal/llm"
)

// usageLabel tags every validator call for downstream usage tracing.
const usageLabel = "document_location_validation"

// Fields are the named values substituted into an instruction template,
// e.g. {"county": "Box Elder", "state": "Utah"}.
type Fields map[string]string

// Validator turns one page of content into a boolean verdict.
type Validator interface {
	// Name identifies the validator in logs and traces.
	Name() string
	// Check reports whether content passes. Empty content fails
	// immediately without an LLM call. Upstream call errors are returned
	// unwrapped by policy; callers decide how to surface them.
	Check(ctx context.Context, content string, fields Fields) (bool, error)
}

// fixedPrompt is a validator with a static instruction template. Variants
// differ only in instruction text and in how the structured response reduces
// to a boolean.
type fixedPrompt struct {
	name     string
	caller   llm.StructuredCaller
	template string
	parse    func(props map[string]any) bool
}

func (v *fixedPrompt) Name() string { return v.name }

func (v *fixedPrompt) Check(ctx context.Context, content string, fields Fields) (bool, error) {
	if content == "" {
		return false, nil
	}
	sysMsg := expandTemplate(v.template, fields)
	props, err := v.caller.Call(ctx, sysMsg, content, usageLabel)
	if err != nil {
		return false, err
	}
	return v.parse(props), nil
}

// expandTemplate substitutes {key} placeholders from fields.
func expandTemplate(tmpl string, fields Fields) string {
	for k, v := range fields {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

// boolProp reads a response field leniently: models occasionally return
// booleans as strings.
func boolProp(props map[string]any, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	case float64:
		return v != 0
	}
	return false
}

// noneTrue passes when none of the listed keys are true.
func noneTrue(keys ...string) func(map[string]any) bool {
	return func(props map[string]any) bool {
		for _, key := range keys {
			if boolProp(props, key) {
				return false
			}
		}
		return true
	}
}

// allTrue passes only when every listed key is true.
func allTrue(keys ...string) func(map[string]any) bool {
	return func(props map[string]any) bool {
		for _, key := range keys {
			if !boolProp(props, key) {
				return false
			}
		}
		return true
	}
}

const countyJurisdictionPrompt = "You extract structured data from legal text. Return " +
	"your answer in JSON format. Your JSON file must include exactly " +
	"three keys. The first key is 'x', which is a boolean that is set to " +
	"`True` if the text excerpt explicitly mentions that the regulations " +
	"within apply to a jurisdiction scope other than {county} County " +
	"(i.e. they apply to a subdivision like a township or a city, or " +
	"they apply more broadly, like to a state or the full country). " +
	"`False` if the regulations in the text apply at the {county} County " +
	"level, if the regulations in the text apply to all unincorporated " +
	"areas of {county} County, or if there is not enough information to " +
	"determine the answer. The second key is 'y', which is a boolean " +
	"that is set to `True` if the text excerpt explicitly mentions that " +
	"the regulations within apply to more than one county. `False` if " +
	"the regulations in the text excerpt apply to a single county only " +
	"or if there is not enough information to determine the answer. The " +
	"third key is 'explanation', which is a string that contains a short " +
	"explanation if you chose `True` for any answers above."

const countyNamePrompt = "You extract structured data from legal text. Return " +
	"your answer in JSON format. Your JSON file must include exactly " +
	"three keys. The first key is 'wrong_county', which is a boolean that " +
	"is set to `True` if the legal text is not for {county} County. Do " +
	"not infer based on any information about any US state, city, " +
	"township, or otherwise. `False` if the text applies to {county} " +
	"County or if there is not enough information to determine the " +
	"answer. The second key is 'wrong_state', which is a boolean that is " +
	"set to `True` if the legal text is not for a county in {state} " +
	"State. Do not infer based on any information about any US county, " +
	"city, township, or otherwise. `False` if the text applies to " +
	"a county in {state} State or if there is not enough information to " +
	"determine the answer. The third key is 'explanation', which is a " +
	"string that contains a short explanation if you chose `True` for " +
	"any answers above."

const urlPrompt = "You extract structured data from a URL. Return your " +
	"answer in JSON format. Your JSON file must include exactly two keys. " +
	"The first key is 'correct_county', which is a boolean that is set to " +
	"`True` if the URL mentions {county} County in some way. DO NOT infer " +
	"based on information in the URL about any US state, city, township, " +
	"or otherwise. `False` if not sure. The second key is " +
	"'correct_state', which is a boolean that is set to `True` if the URL " +
	"mentions {state} State in some way. DO NOT infer based on " +
	"information in the URL about any US county, city, township, or " +
	"otherwise. `False` if not sure."

const districtJurisdictionPrompt = "You extract structured data from legal text. Return " +
	"your answer in JSON format. Your JSON file must include exactly " +
	"three keys. The first key is 'x', which is a boolean that is set to " +
	"`True` if the text excerpt explicitly mentions that the regulations " +
	"within apply to a jurisdiction scope other than {district} " +
	"(i.e. they apply to a subdivision like a township or a city, or " +
	"they apply more broadly, like to a state, the full country, or an " +
	"aquifer management zone). `False` if the regulations in the text " +
	"apply at the {district} level or if there is not enough information to " +
	"determine the answer. The second key is 'y', which is a boolean " +
	"that is set to `True` if the text excerpt explicitly mentions that " +
	"the regulations within apply to more than one groundwater conservation " +
	"district. `False` if the regulations in the text excerpt apply to a " +
	"single groundwater conservation district only or if there is not enough " +
	"information to determine the answer. The third key is 'explanation', " +
	"which is a string that contains a short explanation if you chose `True` " +
	"for any answers above."

const districtNamePrompt = "You extract structured data from legal text. Return " +
	"your answer in JSON format. Your JSON file must include exactly " +
	"three keys. The first key is 'wrong_district', which is a boolean that " +
	"is set to `True` if the legal text is not for {district}. Do " +
	"not infer based on any information about any US state, city, " +
	"township, or otherwise and keep in mind that aquifer management zones " +
	"should not be considered groundwater conservation districts. " +
	"`False` if the text applies to {district} or if there is not enough " +
	"information to determine the answer. The second key is 'wrong_state', " +
	"which is a boolean that is set to `True` if the legal text is not for " +
	"a conservation district in the state of {state}. Do not infer based " +
	"on any information about any US county, city, township, or otherwise. " +
	"`False` if the text applies to a conservation district in the state of " +
	"{state} or if there is not enough information to determine the answer. " +
	"The third key is 'explanation', which is a string that contains a short " +
	"explanation if you chose `True` for any answers above."

// NewCountyJurisdictionValidator checks that text applies at the county
// level: neither a narrower/broader scope ('x') nor multiple counties ('y').
func NewCountyJurisdictionValidator(caller llm.StructuredCaller) Validator {
	return &fixedPrompt{
		name:     "county_jurisdiction",
		caller:   caller,
		template: countyJurisdictionPrompt,
		parse:    noneTrue("x", "y"),
	}
}

// NewCountyNameValidator checks that text applies to a particular county.
func NewCountyNameValidator(caller llm.StructuredCaller) Validator {
	return &fixedPrompt{
		name:     "county_name",
		caller:   caller,
		template: countyNamePrompt,
		parse:    noneTrue("wrong_county", "wrong_state"),
	}
}

// NewURLValidator checks whether a URL names the county and state.
func NewURLValidator(caller llm.StructuredCaller) Validator {
	return &fixedPrompt{
		name:     "source_url",
		caller:   caller,
		template: urlPrompt,
		parse:    allTrue("correct_county", "correct_state"),
	}
}

// NewDistrictJurisdictionValidator checks that text applies at the
// groundwater-conservation-district level.
func NewDistrictJurisdictionValidator(caller llm.StructuredCaller) Validator {
	return &fixedPrompt{
		name:     "district_jurisdiction",
		caller:   caller,
		template: districtJurisdictionPrompt,
		parse:    noneTrue("x", "y"),
	}
}

// NewDistrictNameValidator checks that text applies to a particular
// groundwater conservation district.
func NewDistrictNameValidator(caller llm.StructuredCaller) Validator {
	return &fixedPrompt{
		name:     "district_name",
		caller:   caller,
		template: districtNamePrompt,
		parse:    noneTrue("wrong_district", "wrong_state"),
	}
}
