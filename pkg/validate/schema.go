package validate

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field describes one JSON field and the constraints its validate tag puts on it.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	GreaterThan *float64 `json:"greater_than,omitempty"`
	OneOf       []string `json:"one_of,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	Items       []Field  `json:"items,omitempty"`
}

type CrossFieldRule struct {
	Name        string   `json:"name"`
	Fields      []string `json:"fields"`
	Description string   `json:"description"`
}

type Schema struct {
	Name   string           `json:"name"`
	Fields []Field          `json:"fields"`
	Rules  []CrossFieldRule `json:"cross_field_rules,omitempty"`
}

var BudgetRule = CrossFieldRule{
	Name:        "budget",
	Fields:      []string{"budget", "milestones[].cost"},
	Description: "sum of milestone costs must equal budget within 0.01",
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Describe builds the schema of dto from the same validate tags the server enforces.
func Describe(name string, dto any, rules ...CrossFieldRule) Schema {
	t := reflect.TypeOf(dto)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Schema{Name: name, Fields: describeFields(t), Rules: rules}
}

func describeFields(t reflect.Type) []Field {
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		fields = append(fields, describeField(name, sf.Type, sf.Tag.Get("validate")))
	}
	return fields
}

func describeField(name string, t reflect.Type, tag string) Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	f := Field{Name: name, Type: typeName(t)}

	rules := splitTag(tag)
	for i, rule := range rules {
		if rule == "dive" {
			elem := t.Elem()
			for elem.Kind() == reflect.Pointer {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct && elem != timeType {
				f.Items = describeFields(elem)
			} else {
				f.Items = []Field{describeField("", elem, strings.Join(rules[i+1:], ","))}
			}
			break
		}
		applyRule(&f, rule)
	}
	return f
}

func applyRule(f *Field, rule string) {
	key, param, _ := strings.Cut(rule, "=")
	switch key {
	case "required":
		f.Required = true
	case "min":
		f.Min = parseFloat(param)
	case "max":
		f.Max = parseFloat(param)
	case "gt":
		f.GreaterThan = parseFloat(param)
	case "oneof":
		f.OneOf = strings.Fields(param)
	case "omitempty", "":
	default:
		f.Rules = append(f.Rules, key)
	}
}

func splitTag(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func typeName(t reflect.Type) string {
	switch t {
	case timeType:
		return "datetime"
	case decimalType:
		return "number"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	}
	return t.Kind().String()
}
