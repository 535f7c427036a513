package trace

import "testing"

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(t.Context(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Fatal(err)
	}

	_, span := Tracer().Start(t.Context(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("want no-op span without exporter")
	}
}
