package normalizer

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"alfredoptarigan/resume-ranker/internal/models"
)

// notAvailable lists the placeholder strings that stand for "no value" in parser
// output and company spreadsheets.
var notAvailable = map[string]struct{}{
	"":              {},
	"none":          {},
	"null":          {},
	"na":            {},
	"n/a":           {},
	"not available": {},
}

func isNotAvailable(s string) bool {
	_, ok := notAvailable[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// SplitList tokenises a comma-separated value. Tokens are trimmed of surrounding
// spaces only; their case and inner spacing are kept as written.
func SplitList(s string) []string {
	if isNotAvailable(s) {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseNumber reads numbers like "7.5", "3+" or "Not Available". Anything that
// does not parse is 0.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), "+", "")
	if isNotAvailable(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseFlag accepts YES/NO style spreadsheet and parser flags.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

func listHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	return SplitList(reflect.ValueOf(data).String()), nil
}

func numberHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return ParseNumber(reflect.ValueOf(data).String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int64(ParseNumber(reflect.ValueOf(data).String())), nil
	}
	return data, nil
}

func flagHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return ParseFlag(reflect.ValueOf(data).String()), nil
}

func decode(input map[string]interface{}, tagName string, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(listHook, numberHook, flagHook),
		WeaklyTypedInput: true,
		TagName:          tagName,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(input)
}

// DecodeResume maps untyped parser output onto RawResume. Fields that cannot be
// decoded keep their zero value; the returned error only describes them.
func DecodeResume(input map[string]interface{}) (RawResume, error) {
	var raw RawResume
	if err := decode(input, "mapstructure", &raw); err != nil {
		return raw, fmt.Errorf("failed to decode resume attributes: %w", err)
	}
	return raw, nil
}

// DecodeStoredResume reads the RawResume JSON kept on a stored resume.
func DecodeStoredResume(data []byte) (RawResume, error) {
	var raw RawResume
	if len(data) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawResume{}, fmt.Errorf("failed to decode stored resume attributes: %w", err)
	}
	return raw, nil
}

// companyAliases maps legacy payload keys onto the current ones.
var companyAliases = map[string]string{
	"visitsIITPatna": "visitsCampus",
	"minCpi":         "cpi",
	"branches":       "branch",
}

func withAliases(input map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}
	for alias, key := range companyAliases {
		if v, ok := out[alias]; ok {
			if _, exists := out[key]; !exists {
				out[key] = v
			}
			delete(out, alias)
		}
	}
	return out
}

// DecodeCompany maps a company payload whose list fields may be arrays or
// comma-separated strings.
func DecodeCompany(input map[string]interface{}) (models.CompanyRequest, error) {
	var req models.CompanyRequest
	if err := decode(withAliases(input), "json", &req); err != nil {
		return req, fmt.Errorf("failed to decode company: %w", err)
	}
	return req, nil
}

// DecodeCompanyPatch is DecodeCompany for partial updates: absent keys stay nil.
func DecodeCompanyPatch(input map[string]interface{}) (models.CompanyPatch, error) {
	var patch models.CompanyPatch
	if err := decode(withAliases(input), "json", &patch); err != nil {
		return patch, fmt.Errorf("failed to decode company: %w", err)
	}
	return patch, nil
}
