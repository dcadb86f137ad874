// -----------------------------------------------------------------------
// {name} reference replacement for configuration values
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ternarybob/arbor"
)

// varRefPattern matches {name} references in strings
// Allows alphanumeric characters, hyphens, and underscores
var varRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplaceVarReferences replaces every {name} in input with vars[name].
// Unknown names are left unchanged and logged at warn.
//
// Example:
//
//	ReplaceVarReferences("{ndk}/ndk-build -n", map[string]string{"ndk": "/opt/ndk"}, logger)
//	Returns: "/opt/ndk/ndk-build -n"
func ReplaceVarReferences(input string, vars map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return varRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		logger.Warn().
			Str("reference", match).
			Str("var", name).
			Msg("Unresolved config reference - var not defined")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces {name} references in
// string fields, string slices, string maps, nested structs and slices of
// structs. The struct is mutated in place.
func ReplaceInStruct(v interface{}, vars map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	replaceInValue(val, "", vars, logger)
	return nil
}

func replaceInValue(val reflect.Value, path string, vars map[string]string, logger arbor.ILogger) {
	switch val.Kind() {
	case reflect.String:
		if !val.CanSet() {
			return
		}
		old := val.String()
		if replaced := ReplaceVarReferences(old, vars, logger); replaced != old {
			val.SetString(replaced)
			logger.Debug().
				Str("field", path).
				Str("old", old).
				Str("new", replaced).
				Msg("Replaced config reference")
		}

	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			if !typ.Field(i).IsExported() {
				continue
			}
			replaceInValue(val.Field(i), join(path, typ.Field(i).Name), vars, logger)
		}

	case reflect.Ptr:
		if !val.IsNil() {
			replaceInValue(val.Elem(), path, vars, logger)
		}

	case reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			replaceInValue(val.Index(i), fmt.Sprintf("%s[%d]", path, i), vars, logger)
		}

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String || val.Type().Elem().Kind() != reflect.String {
			return
		}
		for _, key := range val.MapKeys() {
			old := val.MapIndex(key).String()
			if replaced := ReplaceVarReferences(old, vars, logger); replaced != old {
				val.SetMapIndex(key, reflect.ValueOf(replaced).Convert(val.Type().Elem()))
			}
		}
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
