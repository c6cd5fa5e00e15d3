package zettel

import (
	"encoding/json"
	"testing"
)

func TestOrderedMap_MarshalJSON_PreservesOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("zeta", String("z"))
	m.Set("alpha", Int(1))
	m.Set("flag", Bool(true))

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":"z","alpha":1,"flag":true}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestOrderedMap_MarshalJSON_Nil(t *testing.T) {
	var m *OrderedMap
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("got %s, want null", data)
	}
}

func TestValue_MarshalJSON_List(t *testing.T) {
	v := List([]Value{String("a"), Int(2), Null()})
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["a",2,null]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
