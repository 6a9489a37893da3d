package convert_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

var upload = shape.MustModel("Upload",
	shape.Required("file", shape.File),
	shape.Optional("tags", shape.ListOf(shape.String)),
)

func TestDumpFileCanRetry(t *testing.T) {
	tests := []struct {
		name string
		body io.Reader
		want bool
	}{
		{name: "seekable", body: bytes.NewReader([]byte("pdf")), want: true},
		{name: "stream", body: io.MultiReader(strings.NewReader("pdf")), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := value.NewBuilder("Upload").
				Set("file", value.File{Name: "brief.pdf", Body: tt.body}).
				Build()
			dumped, err := convert.Dump(upload, params)
			if err != nil {
				t.Fatalf("dump: %v", err)
			}
			if dumped.CanRetry != tt.want {
				t.Fatalf("expected CanRetry=%t, got %t", tt.want, dumped.CanRetry)
			}
		})
	}
}

func TestRejectedUnionVariantDoesNotClearRetry(t *testing.T) {
	// The model variant dumps the stream before failing on "extra".
	body := shape.OneOf(upload, shape.String)
	st := convert.NewDumpState()
	stream := io.MultiReader(strings.NewReader("x"))
	_, err := convert.DumpWith(body, map[string]any{"file": stream, "extra": 1}, st)
	if err == nil {
		t.Fatalf("expected dump to fail")
	}
	if !st.CanRetry() {
		t.Fatalf("a rejected variant must not mark the body one-shot")
	}

	_, err = convert.DumpWith(body, map[string]any{"file": stream}, st)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if st.CanRetry() {
		t.Fatalf("the winning variant's one-shot body must be recorded")
	}
}

func TestDumpStateSharesFlagAcrossPaths(t *testing.T) {
	st := convert.NewDumpState()
	nested := st.Field("a").Index(0).Key("k")
	nested.MarkOneShot()
	if st.CanRetry() {
		t.Fatalf("expected the root state to observe the nested mark")
	}
	if got := nested.Path().String(); got != "a[0].k" {
		t.Fatalf("unexpected path %q", got)
	}
	if !st.Path().IsRoot() {
		t.Fatalf("deriving a child must not change the parent path")
	}
}

func TestCoerceStatePathIsImmutable(t *testing.T) {
	root := convert.NewCoerceState()
	left := root.Field("items").Index(1)
	right := root.Field("items").Index(2)
	if left.Path().String() != "items[1]" || right.Path().String() != "items[2]" {
		t.Fatalf("sibling paths interfered: %q %q", left.Path(), right.Path())
	}
	if diff := left.Path().Segments(); len(diff) != 2 || diff[1] != "1" {
		t.Fatalf("unexpected segments %v", diff)
	}
}

func TestDumpWithRejectsZeroState(t *testing.T) {
	var st convert.DumpState
	stream := io.MultiReader(strings.NewReader("pdf"))
	if _, err := convert.DumpWith(shape.File, stream, st); !errors.Is(err, convert.ErrDumpState) {
		t.Fatalf("expected ErrDumpState, got %v", err)
	}
	if st.CanRetry() {
		t.Fatalf("a zero state must not report the body as replayable")
	}
}
