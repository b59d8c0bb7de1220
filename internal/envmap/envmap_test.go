package envmap

import (
	"reflect"
	"testing"
)

type payload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestNormalizeScalarsPassThrough(t *testing.T) {
	cases := []any{nil, true, "text", 42, int64(9), 3.5}
	for _, in := range cases {
		if got := Normalize(in); got != in {
			t.Fatalf("expected %v to pass through, got %v", in, got)
		}
	}
}

func TestNormalizeStruct(t *testing.T) {
	got := Normalize(payload{Name: "webhook", Count: 3, Tags: []string{"a", "b"}})

	want := map[string]any{
		"name":  "webhook",
		"count": float64(3),
		"tags":  []any{"a", "b"},
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("normalized struct mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestNormalizeTypedSlice(t *testing.T) {
	got := Normalize([]int{1, 2, 3})

	want := []any{float64(1), float64(2), float64(3)}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("normalized slice mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestNormalizeUnmarshalableReturnsInput(t *testing.T) {
	ch := make(chan int)
	if got := Normalize(ch); got != any(ch) {
		t.Fatalf("expected channel to be returned unchanged, got %v", got)
	}
}

func TestNormalizeMap(t *testing.T) {
	got := NormalizeMap(map[string]any{
		"payload": payload{Name: "digest", Count: 1},
		"flag":    true,
	})

	want := map[string]any{
		"payload": map[string]any{"name": "digest", "count": float64(1)},
		"flag":    true,
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("normalized map mismatch:\nwant: %#v\n got: %#v", want, got)
	}

	if NormalizeMap(nil) != nil {
		t.Fatal("expected nil map to stay nil")
	}
}
