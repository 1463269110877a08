package confloader

import (
	"reflect"
	"strings"
)

// walk calls fn for every leaf field reachable from v, keyed by its dotted
// koanf path. Fields tagged koanf:"-" and nil nested pointers are skipped.
func walk(v reflect.Value, prefix string, fn func(key string, field reflect.Value)) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		fv := v.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			walk(fv, key, fn)
			continue
		}
		fn(key, fv)
	}
}

// structKeys returns the dotted koanf keys of every leaf field of v in
// declaration order.
func structKeys(v any) []string {
	var keys []string
	walk(reflect.ValueOf(v), "", func(key string, _ reflect.Value) {
		keys = append(keys, key)
	})
	return keys
}

// Flatten returns the leaf values of a koanf-tagged struct keyed by their
// dotted paths, the same keys a configuration file or PWDLESS_ variable
// would use.
func Flatten(v any) map[string]any {
	out := make(map[string]any)
	walk(reflect.ValueOf(v), "", func(key string, field reflect.Value) {
		out[key] = field.Interface()
	})
	return out
}

// envKeyIndex maps the underscore form of each key to the key itself:
// "store_default_ttl" -> "store.default_ttl".
func envKeyIndex(keys []string) map[string]string {
	idx := make(map[string]string, len(keys))
	for _, k := range keys {
		idx[strings.ReplaceAll(k, ".", "_")] = k
	}
	return idx
}
