package record

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func TestFindElement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // expected element, empty if none
		start int    // expected start, if the element is incomplete
	}{
		{
			name:  "single element",
			input: `<Publisher>x</Publisher>`,
			want:  `<Publisher>x</Publisher>`,
		},
		{
			name:  "leading declaration",
			input: "<?xml version=\"1.0\"?>\n<Publisher>x</Publisher>\n",
			want:  `<Publisher>x</Publisher>`,
		},
		{
			name:  "with attributes",
			input: `<Publisher xml:lang="en">x</Publisher><Publisher>y</Publisher>`,
			want:  `<Publisher xml:lang="en">x</Publisher>`,
		},
		{
			name:  "similar tag names",
			input: `<PublisherInfo><PublisherName>S</PublisherName></PublisherInfo>`,
			start: -1,
		},
		{
			name:  "similar tag names inside",
			input: `<Publisher><PublisherInfo><PublisherName>S</PublisherName></PublisherInfo></Publisher>`,
			want:  `<Publisher><PublisherInfo><PublisherName>S</PublisherName></PublisherInfo></Publisher>`,
		},
		{
			name:  "nested",
			input: `<Publisher><Publisher>inner</Publisher></Publisher>tail`,
			want:  `<Publisher><Publisher>inner</Publisher></Publisher>`,
		},
		{
			name:  "self-closing",
			input: `<Publisher/><Publisher>x</Publisher>`,
			want:  `<Publisher/>`,
		},
		{
			name:  "incomplete",
			input: `  <Publisher><Journal>`,
			start: 2,
		},
		{
			name:  "cut off start tag",
			input: `abc<Publisher`,
			start: 3,
		},
		{
			name:  "no element",
			input: `<Journal/>`,
			start: -1,
		},
	}
	var (
		openTag  = []byte("<Publisher")
		closeTag = []byte("</Publisher>")
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := findElement([]byte(tt.input), openTag, closeTag)
			if tt.want == "" {
				if start != tt.start || end != -1 {
					t.Errorf("findElement() = (%d, %d), want (%d, -1)", start, end, tt.start)
				}
				return
			}
			if start == -1 || end == -1 {
				t.Fatalf("findElement() = (%d, %d), want %q", start, end, tt.want)
			}
			if got := tt.input[start:end]; got != tt.want {
				t.Errorf("findElement() = %q, want %q", got, tt.want)
			}
		})
	}
}

const stream = `<?xml version="1.0" encoding="UTF-8"?>
<Publisher><PublisherInfo><PublisherName>A</PublisherName></PublisherInfo></Publisher>
<?xml version="1.0" encoding="UTF-8"?>
<Publisher id="2">b</Publisher>
<Publisher/>
`

func scanAll(t *testing.T, s string, split bufio.SplitFunc) ([]string, error) {
	t.Helper()
	scanner := bufio.NewScanner(iotest.OneByteReader(strings.NewReader(s)))
	scanner.Split(split)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	return tokens, scanner.Err()
}

func TestTagSplitter(t *testing.T) {
	tokens, err := scanAll(t, stream, TagSplitter("Publisher"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{
		`<Publisher><PublisherInfo><PublisherName>A</PublisherName></PublisherInfo></Publisher>`,
		`<Publisher id="2">b</Publisher>`,
		`<Publisher/>`,
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestTagSplitterIncomplete(t *testing.T) {
	tokens, err := scanAll(t, `<Publisher>a</Publisher><Publisher>b`, TagSplitter("Publisher"))
	if !errors.Is(err, ErrIncompleteElement) {
		t.Errorf("got %v, want %v", err, ErrIncompleteElement)
	}
	if len(tokens) != 1 {
		t.Errorf("got %d tokens, want 1", len(tokens))
	}
}

func TestTagSplitterInvalid(t *testing.T) {
	if _, err := scanAll(t, stream, TagSplitter("")); !errors.Is(err, ErrInvalidSplitter) {
		t.Errorf("got %v, want %v", err, ErrInvalidSplitter)
	}
}

func TestProcessor(t *testing.T) {
	input := strings.Repeat(`<Publisher>keep</Publisher><Publisher>skip</Publisher>`, 50)
	f := func(p []byte) ([]byte, error) {
		if bytes.Contains(p, []byte("skip")) {
			return nil, ErrSkip
		}
		return append(bytes.ToUpper(p), '\n'), nil
	}
	var buf bytes.Buffer
	proc := NewProcessor(f, WithTag("Publisher"), WithWorkers(4))
	if err := proc.Process(context.Background(), strings.NewReader(input), &buf); err != nil {
		t.Fatalf("process: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	sort.Strings(lines)
	if len(lines) != 50 || lines[0] != "<PUBLISHER>KEEP</PUBLISHER>" || lines[49] != lines[0] {
		t.Errorf("unexpected output: %d lines, first %q", len(lines), lines[0])
	}
	want := Stats{Records: 100, Skipped: 50, Written: 50}
	if diff := cmp.Diff(want, proc.Stats()); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestProcessorError(t *testing.T) {
	boom := errors.New("boom")
	f := func(p []byte) ([]byte, error) {
		return nil, boom
	}
	proc := NewProcessor(f, WithWorkers(2))
	err := proc.Process(context.Background(), strings.NewReader("a\nb\nc\n"), &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestProcessorMaxTokenSize(t *testing.T) {
	f := func(p []byte) ([]byte, error) { return p, nil }
	proc := NewProcessor(f, WithTag("Publisher"), WithMaxTokenSize(16))
	input := `<Publisher>` + strings.Repeat("x", 64) + `</Publisher>`
	err := proc.Process(context.Background(), strings.NewReader(input), &bytes.Buffer{})
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("got %v, want %v", err, bufio.ErrTooLong)
	}
}
