package api

import (
	"encoding/json"
	"sort"

	"bookshop/internal/apperr"
	"bookshop/internal/user"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// field describes one column a partial update may write.
type field struct {
	column string
	decode func(json.RawMessage) (any, bool)
	rule   string // validator rule applied to the decoded value
}

type allowlist map[string]field

func stringField(column, rule string) field {
	return field{column: column, rule: rule, decode: func(raw json.RawMessage) (any, bool) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return s, true
	}}
}

func nullableStringField(column string) field {
	return field{column: column, decode: func(raw json.RawMessage) (any, bool) {
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		if s == nil {
			return nil, true
		}
		return *s, true
	}}
}

func numberField(column, rule string) field {
	return field{column: column, rule: rule, decode: func(raw json.RawMessage) (any, bool) {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, false
		}
		return f, true
	}}
}

// intField accepts a number or a numeric string.
func intField(column, rule string) field {
	return field{column: column, rule: rule, decode: func(raw json.RawMessage) (any, bool) {
		var i looseInt
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, false
		}
		return int(i), true
	}}
}

// passwordField accepts a plaintext password and writes its hash.
func passwordField() field {
	return field{column: "password_hash", decode: func(raw json.RawMessage) (any, bool) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil, false
		}
		return s, true
	}}
}

var (
	bookPatch = allowlist{
		"title":     stringField("title", "required"),
		"author":    stringField("author", "required"),
		"price":     numberField("price", "gte=0"),
		"condition": stringField("condition", "required"),
	}
	reviewPatch = allowlist{
		"rating":  intField("rating", "min=1,max=5"),
		"comment": nullableStringField("comment"),
	}
	userPatch = allowlist{
		"username":        stringField("username", "required"),
		"email":           stringField("email", "required"),
		"profile_picture": nullableStringField("profile_picture"),
		"password":        passwordField(),
	}
)

// apply checks body against the allowlist and returns the column values to write.
// Keys are visited in sorted order so the reported error does not depend on map order.
func (a allowlist) apply(body map[string]json.RawMessage) (map[string]any, error) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(body))
	for _, k := range keys {
		f, ok := a[k]
		if !ok {
			return nil, apperr.Newf(apperr.Validation, "Field %q cannot be updated.", k)
		}
		v, ok := f.decode(body[k])
		if !ok {
			return nil, apperr.Newf(apperr.Validation, "Invalid value for %q.", k)
		}
		if f.rule != "" {
			if err := validate.Var(v, f.rule); err != nil {
				return nil, apperr.Newf(apperr.Validation, "Invalid value for %q.", k)
			}
		}
		if f.column == "password_hash" {
			hash, err := user.HashPassword(v.(string))
			if err != nil {
				return nil, err
			}
			v = hash
		}
		out[f.column] = v
	}
	return out, nil
}
