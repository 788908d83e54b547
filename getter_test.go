package twine

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestColumnGetter(t *testing.T) {
	r := mustRecord(t, nil, "1", "Jon", "30")

	v, err := Column(1).Get(r)
	if err != nil || v != "Jon" {
		t.Errorf("Column(1).Get = %q, %v, want Jon", v, err)
	}
	if _, err := Column(9).Get(r); !errors.Is(err, ErrFieldLookup) {
		t.Errorf("Column(9).Get: err = %v, want ErrFieldLookup", err)
	}
}

func TestAttrGetter(t *testing.T) {
	s := NewSchema("id", "name")
	r := mustRecord(t, s, "1", "Jon")

	v, err := Attr("name").Get(r)
	if err != nil || v != "Jon" {
		t.Errorf("Attr(name).Get = %q, %v, want Jon", v, err)
	}
	if _, err := Attr("age").Get(r); !errors.Is(err, ErrFieldLookup) {
		t.Errorf("Attr(age).Get: err = %v, want ErrFieldLookup", err)
	}

	schemaless := mustRecord(t, nil, "1", "Jon")
	if _, err := Attr("name").Get(schemaless); !errors.Is(err, ErrFieldLookup) {
		t.Errorf("Attr on schemaless record: err = %v, want ErrFieldLookup", err)
	}
}

func TestDerivedGetter(t *testing.T) {
	r := mustRecord(t, nil, "1", "Jon", "Smith")

	full := Derived(func(r *Record) (string, error) {
		first, err := r.Value(1)
		if err != nil {
			return "", err
		}
		last, err := r.Value(2)
		if err != nil {
			return "", err
		}
		return first + " " + last, nil
	})
	v, err := full.Get(r)
	if err != nil || v != "Jon Smith" {
		t.Errorf("Derived.Get = %q, %v, want Jon Smith", v, err)
	}
}

func TestMultiValueSplitsAndTrims(t *testing.T) {
	r := mustRecord(t, nil, "1", "red; blue;", "green")

	values, err := MultiValue(";", Column(1)).GetAll(r)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"red", "blue"}) {
		t.Errorf("GetAll = %v, want [red blue]", values)
	}

	values, err = MultiValue(";", Column(1), Column(2)).GetAll(r)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"red", "blue", "green"}) {
		t.Errorf("GetAll = %v, want [red blue green]", values)
	}
}

func TestCombineMergesFields(t *testing.T) {
	r := mustRecord(t, nil, "A", "X", "C", "D")

	values, err := Combine(Column(0), Column(2), Column(3)).GetAll(r)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"A", "C", "D"}) {
		t.Errorf("GetAll = %v, want [A C D]", values)
	}
}

func TestMultiValuePropagatesLookupError(t *testing.T) {
	r := mustRecord(t, nil, "1")

	if _, err := MultiValue(";", Column(5)).GetAll(r); !errors.Is(err, ErrFieldLookup) {
		t.Errorf("GetAll: err = %v, want ErrFieldLookup", err)
	}
}

func TestTokensSplitsWords(t *testing.T) {
	r := mustRecord(t, nil, "1", "Smith, John  A.")

	values, err := Tokens(Column(1)).GetAll(r)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	joined := strings.Join(values, "|")
	for _, want := range []string{"Smith", "John", "A"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Tokens = %v, missing %q", values, want)
		}
	}
	for _, tok := range values {
		if strings.TrimSpace(tok) == "" {
			t.Errorf("Tokens returned a whitespace token: %q", tok)
		}
	}
}
