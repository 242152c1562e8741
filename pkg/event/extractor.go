package event

import (
	"reflect"
	"strings"
)

type DefaultFieldExtractor struct{}

// ExtractFields reads the named JSON fields of a struct, descending into
// embedded structs. Fields tagged json:"-" are never read.
func (e *DefaultFieldExtractor) ExtractFields(obj interface{}, fields []string) map[string]interface{} {
	result := make(map[string]interface{})
	if obj == nil || len(fields) == 0 {
		return result
	}

	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return result
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}
	e.collect(val, fields, result)
	return result
}

func (e *DefaultFieldExtractor) collect(val reflect.Value, fields []string, result map[string]interface{}) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			e.collect(val.Field(i), fields, result)
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		if jsonTag == "" {
			jsonTag = strings.ToLower(field.Name)
		}
		jsonTag = strings.Split(jsonTag, ",")[0]

		if contains(fields, jsonTag) {
			result[jsonTag] = val.Field(i).Interface()
		}
	}
}

func (e *DefaultFieldExtractor) ExtractChanges(old, new interface{}, fields []string) map[string]interface{} {
	changes := make(map[string]interface{})
	if old == nil || new == nil || len(fields) == 0 {
		return changes
	}

	oldFields := e.ExtractFields(old, fields)
	newFields := e.ExtractFields(new, fields)

	for field, newValue := range newFields {
		if oldValue, exists := oldFields[field]; exists {
			if !reflect.DeepEqual(oldValue, newValue) {
				changes[field] = map[string]interface{}{
					"old": oldValue,
					"new": newValue,
				}
			}
		}
	}
	return changes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
