package api

import (
	"sort"

	"github.com/ifp/vicidial-cli/internal/validation"
)

// Action names a remote function of the non-agent API.
type Action string

const (
	// ActionAddLead inserts a lead into a call list.
	ActionAddLead Action = "add_lead"
)

// Field describes a parameter an action requires.
type Field struct {
	Name string
	Hint string
	// check validates the value format in strict mode. Nil means any value.
	check func(name, value string) error
}

// Validate applies the field's format rule to value.
func (f Field) Validate(value string) error {
	if f.check == nil {
		return nil
	}
	return f.check(f.Name, value)
}

type actionSpec struct {
	required []Field
}

// actionTable holds the required fields per action, in declared order.
var actionTable = map[Action]actionSpec{
	ActionAddLead: {
		required: []Field{
			{
				Name:  "phone_number",
				Hint:  "must be all numbers, 6-16 digits",
				check: digits(6, 16),
			},
			{
				Name:  "phone_code",
				Hint:  "must be all numbers, 1-4 digits",
				check: digits(1, 4),
			},
			{
				Name:  "list_id",
				Hint:  "must be all numbers, 3-12 digits",
				check: digits(3, 12),
			},
			{
				Name: "source",
				Hint: "description of what originated the API call (maximum 20 characters)",
				check: func(name, value string) error {
					return validation.ValidateMaxLength(name, value, 20)
				},
			},
		},
	},
}

func digits(minLen, maxLen int) func(name, value string) error {
	return func(name, value string) error {
		return validation.ValidateDigits(name, value, minLen, maxLen)
	}
}

// Supported reports whether a is a known action.
func (a Action) Supported() bool {
	_, ok := actionTable[a]
	return ok
}

// RequiredFields returns the fields a must carry, in declared order.
// The returned slice is a copy.
func (a Action) RequiredFields() []Field {
	spec, ok := actionTable[a]
	if !ok {
		return nil
	}
	out := make([]Field, len(spec.required))
	copy(out, spec.required)
	return out
}

// requiredField looks up a required field of a by name.
func (a Action) requiredField(name string) (Field, bool) {
	for _, f := range actionTable[a].required {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (a Action) String() string {
	return string(a)
}

// SupportedActions returns the known actions sorted by name.
func SupportedActions() []Action {
	out := make([]Action, 0, len(actionTable))
	for a := range actionTable {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
