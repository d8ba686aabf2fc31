package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional fields", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("a", 0)
		w.Optional("b", "")
		w.Optional("c", 0)
		w.Optional("d", "hello")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"a":0,"d":"hello"}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("decimals", func(t *testing.T) {
		var w jsonObjectWriter
		w.Decimal("quantity", N("1000"))
		w.Decimal("price", decimal.NullDecimal{})
		w.Decimal("value", decimal.NewNullDecimal(decimal.RequireFromString("1234.50")))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"quantity":1000,"value":1234.5}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("marshal error", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("bad", make(chan int))
		w.Append("ignored", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Error("expected an error")
		}
	})
}
