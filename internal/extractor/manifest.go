package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// manifestExports reads a package.json descriptor. The nested "exports" map
// is flattened into one entry per subpath and condition, in declaration
// order; "main" and "types"/"typings" become additional entries.
//
// Manifest keys such as "." are legitimately one character long, so entries
// bypass the collector's name-length filter.
func manifestExports(content string) ([]Signature, error) {
	var manifest map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	var out []Signature
	emit := func(sig, desc string) {
		out = append(out, Signature{Signature: sig, Description: desc, Category: CategoryExport})
	}

	if raw, ok := manifest["exports"]; ok {
		exports, err := decodeOrdered(json.NewDecoder(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("parse exports: %w", err)
		}
		flattenExports(".", "", exports, emit)
	}
	if main := stringField(manifest, "main"); main != "" {
		emit("main", "Main entry point: "+main)
	}
	for _, key := range []string{"types", "typings"} {
		if types := stringField(manifest, key); types != "" {
			emit(key, "Type definitions: "+types)
		}
	}
	if module := stringField(manifest, "module"); module != "" {
		emit("module", "ES module entry point: "+module)
	}
	return Dedup(out), nil
}

// stringField returns a string-valued member, or "" for any other shape.
func stringField(manifest map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(manifest[key], &s); err != nil {
		return ""
	}
	return s
}

// member is one object entry; objects decode to []member so that condition
// precedence survives.
type member struct {
	key   string
	value any
}

// decodeOrdered decodes the next JSON value, keeping object keys in order.
func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		var obj []member
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []any
		for dec.More() {
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// flattenExports walks an exports value. Keys beginning with "." are subpaths;
// any other key is a condition such as "import" or "require".
func flattenExports(subpath, condition string, value any, emit func(sig, desc string)) {
	label := subpath
	if condition != "" {
		label = subpath + " (" + condition + ")"
	}

	switch v := value.(type) {
	case string:
		emit(label, "Exports "+v)
	case []any:
		for _, item := range v {
			flattenExports(subpath, condition, item, emit)
		}
	case []member:
		for _, m := range v {
			if strings.HasPrefix(m.key, ".") {
				flattenExports(m.key, condition, m.value, emit)
				continue
			}
			next := m.key
			if condition != "" {
				next = condition + "." + m.key
			}
			flattenExports(subpath, next, m.value, emit)
		}
	case nil:
		emit(label, "Blocked export")
	}
}
