package bridge

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// GenerateTypeScript writes a client module with one async function per
// registered function, posting the argument array with axios to
// baseURL + "/" + name. Struct types used by the functions are emitted as
// interfaces named after the Go type.
func GenerateTypeScript(w io.Writer, reg *Registry, baseURL string) error {
	g := &tsGen{named: make(map[string]reflect.Type)}
	funcs := reg.Functions()

	// Resolve every signature first so that all interfaces are known.
	sigs := make([]string, len(funcs))
	for i, f := range funcs {
		params := make([]string, len(f.Params))
		for j, p := range f.Params {
			params[j] = f.ParamNames[j] + ": " + g.typeOf(p)
		}
		sigs[i] = fmt.Sprintf("export async function %s(%s): Promise<%s>", f.Name, strings.Join(params, ", "), g.typeOf(f.Result))
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("// Code generated by pagekit. DO NOT EDIT.\n\n")
	bw.WriteString("import axios from \"axios\";\n\n")
	fmt.Fprintf(bw, "const baseURL = %q;\n", strings.TrimSuffix(baseURL, "/"))

	names := make([]string, 0, len(g.named))
	for name := range g.named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bw.WriteString("\n")
		g.writeInterface(bw, name, g.named[name])
	}

	for i, f := range funcs {
		fmt.Fprintf(bw, "\n%s {\n", sigs[i])
		fmt.Fprintf(bw, "  const data = [%s];\n", strings.Join(f.ParamNames, ", "))
		fmt.Fprintf(bw, "  const response = await axios.post<%s>(`${baseURL}/%s`, data);\n", g.typeOf(f.Result), f.Name)
		bw.WriteString("  return response.data;\n}\n")
	}
	return bw.Flush()
}

type tsGen struct {
	named map[string]reflect.Type
}

func (g *tsGen) typeOf(t reflect.Type) string {
	if t == timeType {
		return "string"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Pointer:
		return g.typeOf(t.Elem()) + " | null"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "string"
		}
		return "Array<" + g.typeOf(t.Elem()) + ">"
	case reflect.Array:
		return "Array<" + g.typeOf(t.Elem()) + ">"
	case reflect.Map:
		return "Record<string, " + g.typeOf(t.Elem()) + ">"
	case reflect.Struct:
		if t.Name() == "" {
			return g.inline(t)
		}
		if _, seen := g.named[t.Name()]; !seen {
			g.named[t.Name()] = t
			for _, f := range fields(t) {
				g.typeOf(f.Type)
			}
		}
		return t.Name()
	}
	return "any"
}

func (g *tsGen) inline(t reflect.Type) string {
	var parts []string
	for _, f := range fields(t) {
		parts = append(parts, g.field(f))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (g *tsGen) field(f tsField) string {
	opt := ""
	if f.optional {
		opt = "?"
	}
	return fmt.Sprintf("%s%s: %s", f.name, opt, g.typeOf(f.Type))
}

func (g *tsGen) writeInterface(w *bufio.Writer, name string, t reflect.Type) {
	fmt.Fprintf(w, "export interface %s {\n", name)
	for _, f := range fields(t) {
		fmt.Fprintf(w, "  %s;\n", g.field(f))
	}
	w.WriteString("}\n")
}

type tsField struct {
	reflect.StructField
	name     string
	optional bool
}

// fields lists the JSON-visible fields of a struct, honouring json tags.
func fields(t reflect.Type) []tsField {
	var out []tsField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		optional := false
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, opts, _ := strings.Cut(tag, ",")
			if tagName == "-" && opts == "" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
			optional = strings.Contains(opts, "omitempty")
		}
		out = append(out, tsField{StructField: f, name: name, optional: optional})
	}
	return out
}
