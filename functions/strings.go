// String functions, grounded on
// original_source/crates/fhirpath-registry/src/operations/string/*.rs.
package functions

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerStrings(reg *registry.Registry) {
	str1 := func(name string, f func(s string) value.Value) {
		reg.Register(registry.Func{
			Name: name, Category: registry.CategoryString, Pure: true,
			Arity: registry.Arity{Min: 0, Max: 0},
			Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
				s, ok := singletonString(call.Focus)
				if !ok {
					return nil, nil
				}
				return value.Of(f(s)), nil
			},
		})
	}
	str1("length", func(s string) value.Value { return value.Int(int64(len([]rune(s)))) })
	str1("upper", func(s string) value.Value { return value.Str(strings.ToUpper(s)) })
	str1("lower", func(s string) value.Value { return value.Str(strings.ToLower(s)) })
	reg.Register(registry.Func{
		Name: "toChars", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			var out value.Collection
			for _, r := range s {
				out = append(out, value.Str(string(r)))
			}
			return out, nil
		},
	})

	reg.Register(registry.Func{
		Name: "indexOf", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			sub, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			return value.Of(value.Int(int64(strings.Index(s, sub)))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "substring", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 2},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			runes := []rune(s)
			start, err := singleIntArg(call.ArgValues[0], "substring")
			if err != nil {
				return nil, err
			}
			if start < 0 || start >= len(runes) {
				return nil, nil
			}
			length := len(runes) - start
			if len(call.ArgValues) == 2 {
				length, err = singleIntArg(call.ArgValues[1], "substring")
				if err != nil {
					return nil, err
				}
			}
			end := start + length
			if end > len(runes) {
				end = len(runes)
			}
			if end < start {
				end = start
			}
			return value.Of(value.Str(string(runes[start:end]))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "startsWith", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: stringPredicate(strings.HasPrefix),
	})
	reg.Register(registry.Func{
		Name: "endsWith", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: stringPredicate(strings.HasSuffix),
	})
	reg.Register(registry.Func{
		Name: "contains", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: stringPredicate(strings.Contains),
	})
	reg.Register(registry.Func{
		Name: "replace", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 2, Max: 2},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			pattern, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			repl, ok := singletonString(call.ArgValues[1])
			if !ok {
				return nil, nil
			}
			return value.Of(value.Str(strings.ReplaceAll(s, pattern, repl))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "matches", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			pattern, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, diagnostics.Wrap(diagnostics.InvalidRegex, "invalid regular expression", err)
			}
			return value.Of(value.Bool(re.MatchString(s))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "replaceMatches", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 2, Max: 2},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			pattern, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			repl, ok := singletonString(call.ArgValues[1])
			if !ok {
				return nil, nil
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, diagnostics.Wrap(diagnostics.InvalidRegex, "invalid regular expression", err)
			}
			return value.Of(value.Str(re.ReplaceAllString(s, repl))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "trim", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			return value.Of(value.Str(strings.TrimSpace(s))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "split", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			sep, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			var out value.Collection
			for _, part := range strings.Split(s, sep) {
				out = append(out, value.Str(part))
			}
			return out, nil
		},
	})
	reg.Register(registry.Func{
		Name: "join", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			sep := ""
			if len(call.ArgValues) == 1 {
				sep, _ = singletonString(call.ArgValues[0])
			}
			parts := make([]string, 0, len(call.Focus))
			for _, v := range call.Focus {
				if s, ok := v.StringVal(); ok {
					parts = append(parts, s)
				}
			}
			return value.Of(value.Str(strings.Join(parts, sep))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "encode", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			scheme, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			return value.Of(value.Str(encodeWith(s, scheme))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "decode", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			scheme, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			out, err := decodeWith(s, scheme)
			if err != nil {
				return nil, nil
			}
			return value.Of(value.Str(out)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "escape", Category: registry.CategoryString, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			s, ok := singletonString(call.Focus)
			if !ok {
				return nil, nil
			}
			target, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			if target == "url" {
				return value.Of(value.Str(url.QueryEscape(s))), nil
			}
			return value.Of(value.Str(jsonEscape(s))), nil
		},
	})
}

func stringPredicate(f func(s, sub string) bool) registry.SyncFunc {
	return func(_ context.Context, call registry.Call) (value.Collection, error) {
		s, ok := singletonString(call.Focus)
		if !ok {
			return nil, nil
		}
		sub, ok := singletonString(call.ArgValues[0])
		if !ok {
			return nil, nil
		}
		return value.Of(value.Bool(f(s, sub))), nil
	}
}

func singletonString(c value.Collection) (string, bool) {
	v, ok := singleton(c)
	if !ok {
		return "", false
	}
	return v.StringVal()
}

func encodeWith(s, scheme string) string {
	switch scheme {
	case "url":
		return url.QueryEscape(s)
	case "hex":
		const hexDigits = "0123456789abcdef"
		var sb strings.Builder
		for _, b := range []byte(s) {
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0xf])
		}
		return sb.String()
	default:
		return s
	}
}

func decodeWith(s, scheme string) (string, error) {
	switch scheme {
	case "url":
		return url.QueryUnescape(s)
	default:
		return s, nil
	}
}

func jsonEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
