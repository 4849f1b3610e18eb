package schema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func structuredSection() Section {
	return Section{ID: "s", Title: "S", Required: true, Spec: StructuredSpec{
		Subsections: []Section{
			{ID: "texto", Title: "Texto", Required: true, Spec: TextSpec{Multiline: true}},
			{ID: "lista", Title: "Lista", Required: false, Spec: ListSpec{}},
		},
	}}
}

func TestEmptyValue_Shapes(t *testing.T) {
	tests := []struct {
		name string
		sec  Section
		want Value
	}{
		{"text", Section{ID: "t", Spec: TextSpec{}}, Text("")},
		{"generic", Section{ID: "g", Spec: GenericSpec{}}, Text("")},
		{"list", Section{ID: "l", Spec: ListSpec{}}, Items{}},
		{"table", Section{ID: "tb", Spec: TableSpec{}}, Rows{}},
		{
			"structured seeds subsections",
			structuredSection(),
			Nested{"texto": Text(""), "lista": Items{}},
		},
		{
			"form seeds fields",
			Section{ID: "f", Spec: FormSpec{Fields: []Field{{Name: "a"}, {Name: "b"}}}},
			Form{"a": "", "b": ""},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EmptyValue(tc.sec); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestDecodeValue_Scalars(t *testing.T) {
	sec := Section{ID: "t", Spec: TextSpec{}}

	v, err := DecodeValue(sec, "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Text("hola") {
		t.Errorf("expected Text(hola), got %#v", v)
	}

	if _, err := DecodeValue(sec, 42.0); err == nil {
		t.Error("expected error decoding number as text")
	}

	v, err = DecodeValue(sec, nil)
	if err != nil || v != nil {
		t.Errorf("expected nil value for nil raw, got %#v, %v", v, err)
	}
}

func TestDecodeValue_GenericCoercesScalars(t *testing.T) {
	sec := Section{ID: "g", Spec: GenericSpec{}}
	v, err := DecodeValue(sec, 3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Text("3.5") {
		t.Errorf("expected Text(3.5), got %#v", v)
	}
}

func TestDecodeValue_List(t *testing.T) {
	sec := Section{ID: "l", Spec: ListSpec{}}

	v, err := DecodeValue(sec, []any{"uno", "dos"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v, Items{"uno", "dos"}) {
		t.Errorf("unexpected items: %#v", v)
	}

	if _, err := DecodeValue(sec, "not a list"); err == nil {
		t.Error("expected error for non-sequence")
	}
	if _, err := DecodeValue(sec, []any{map[string]any{}}); err == nil {
		t.Error("expected error for composite list entry")
	}
}

func TestDecodeValue_Table(t *testing.T) {
	sec := Section{ID: "tb", Spec: TableSpec{}}

	v, err := DecodeValue(sec, []any{map[string]any{"col": "v", "n": 2.0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Rows{{"col": "v", "n": "2"}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("expected %#v, got %#v", want, v)
	}

	if _, err := DecodeValue(sec, []any{"not a row"}); err == nil {
		t.Error("expected error for scalar row")
	}
}

func TestDecodeValue_Structured(t *testing.T) {
	sec := structuredSection()

	v, err := DecodeValue(sec, map[string]any{
		"texto": "contenido",
		"lista": []any{"x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nested, ok := v.(Nested)
	if !ok {
		t.Fatalf("expected Nested, got %T", v)
	}
	if nested["texto"] != Text("contenido") {
		t.Errorf("unexpected nested text: %#v", nested["texto"])
	}

	if _, err := DecodeValue(sec, map[string]any{"desconocido": "x"}); err == nil {
		t.Error("expected error for unknown subsection")
	}
}

func TestDecodeValue_Form(t *testing.T) {
	sec := Section{ID: "f", Spec: FormSpec{Fields: []Field{{Name: "cliente"}}}}

	v, err := DecodeValue(sec, map[string]any{"cliente": "ACME"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v, Form{"cliente": "ACME"}) {
		t.Errorf("unexpected form: %#v", v)
	}

	if _, err := DecodeValue(sec, map[string]any{"otro": "x"}); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDecodeData_UnknownSection(t *testing.T) {
	tpl := &Template{ID: "tpl", Title: "T", Sections: []Section{
		{ID: "a", Title: "A", Spec: TextSpec{}},
	}}
	_, err := DecodeData(tpl, map[string]any{"zz": "x"})
	if err == nil || !strings.Contains(err.Error(), `unknown section "zz"`) {
		t.Errorf("expected unknown section error, got %v", err)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tpl := &Template{ID: "tpl", Title: "T", Sections: []Section{
		structuredSection(),
		{ID: "tabla", Title: "Tabla", Spec: TableSpec{}},
	}}
	data := Data{
		"s":     Nested{"texto": Text("hola"), "lista": Items{"a", "b"}},
		"tabla": Rows{{"col": "v"}},
	}

	// Through JSON, the way persistence sees it.
	blob, err := json.Marshal(EncodeData(data))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := DecodeData(tpl, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("round trip mismatch:\nwant %#v\ngot  %#v", data, got)
	}
}

func TestRowColumns(t *testing.T) {
	withHeaders := TableSpec{Headers: []string{"B", "A"}}
	if got := RowColumns(withHeaders, Rows{{"A": "1"}}); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("expected declared header order, got %v", got)
	}

	// Without headers, fall back to the first row's keys, sorted for
	// deterministic output.
	noHeaders := TableSpec{}
	rows := Rows{{"zeta": "1", "alfa": "2"}, {"otra": "3"}}
	if got := RowColumns(noHeaders, rows); !reflect.DeepEqual(got, []string{"alfa", "zeta"}) {
		t.Errorf("expected sorted first-row keys, got %v", got)
	}

	if got := RowColumns(noHeaders, Rows{}); got != nil {
		t.Errorf("expected nil columns for empty rows, got %v", got)
	}
}
