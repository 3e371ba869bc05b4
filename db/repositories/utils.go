package repositories

import (
	"fmt"
	"reflect"
	"strings"
)

// UpdateField is a generic function that updates a field of a struct or a pointer to a struct.
// The function uses reflection to dynamically update the specified field of the input struct.
func UpdateField[T interface{}](input T, fieldName string, newValue interface{}) (T, error) {
	val := reflect.ValueOf(input)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	} else {
		// work on an addressable copy
		val = reflect.ValueOf(&input).Elem()
	}

	if val.Kind() != reflect.Struct {
		return input, fmt.Errorf("Not a struct: %T", input)
	}

	field := val.FieldByName(fieldName)
	if !field.IsValid() {
		return input, fmt.Errorf("Field not found: %v", fieldName)
	}
	if !field.CanSet() {
		return input, fmt.Errorf("Field not settable: %v", fieldName)
	}
	if !reflect.TypeOf(newValue).ConvertibleTo(field.Type()) {
		return input, fmt.Errorf("Incompatible value: %v", newValue)
	}

	field.Set(reflect.ValueOf(newValue).Convert(field.Type()))

	return input, nil
}

// IsEmptyValue checks if value represents a zero-value struct (or pointer to a zero-value struct) using reflection.
// The function is useful for determining if a struct or its pointer is empty, i.e., all fields have their zero-values.
func IsEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return true
		}
		val = val.Elem()
	}

	return val.IsZero()
}

// ResolveField maps name onto the exported struct field of T it refers to.
// name may be the Go field name (case insensitive) or the field's json tag name.
func ResolveField[T any](name string) (string, bool) {
	typ := reflect.TypeOf(*new(T))
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return "", false
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if strings.EqualFold(field.Name, name) || JSONName(field) == name {
			return field.Name, true
		}
	}
	return "", false
}

// JSONName returns the name encoding/json uses for field.
func JSONName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// FieldJSONTag returns the json name of the struct field fieldName of T, or fieldName
// itself when T has no such field.
func FieldJSONTag[T any](fieldName string) string {
	if field, ok := reflect.TypeOf(*new(T)).FieldByName(fieldName); ok {
		return JSONName(field)
	}
	return fieldName
}

// HasField reports whether T declares the struct field fieldName.
func HasField[T any](fieldName string) bool {
	_, ok := reflect.TypeOf(*new(T)).FieldByName(fieldName)
	return ok
}
