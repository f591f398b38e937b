package switchyard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/switchyard/pkg/definition"
	"github.com/aretw0/switchyard/pkg/domain"
)

// Runner drives a Machine from line-oriented input. Each line is one Advance:
// "key=value" fields become named arguments, other fields positional ones,
// all parsed as YAML scalars. An empty line advances without arguments.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	// JSON switches both directions to JSON lines: Input records in, Record
	// records out. Errors are reported as records and do not stop the run.
	JSON     bool
	Renderer StateRenderer
}

// StateRenderer formats the state reached after each step.
// This allows for styled output without coupling the core package.
type StateRenderer func(domain.State) string

// Input is one JSON-lines request. Plain strings and bare text are also
// accepted and parsed like text lines.
type Input struct {
	Args  []any          `json:"args,omitempty"`
	Named map[string]any `json:"named,omitempty"`
}

// ToArgs converts the request, normalizing numbers. Named values are added in key order.
func (in Input) ToArgs() domain.Args {
	values := make([]any, 0, len(in.Args)+len(in.Named))
	for _, v := range in.Args {
		values = append(values, definition.Normalize(v))
	}
	for _, k := range slices.Sorted(maps.Keys(in.Named)) {
		values = append(values, domain.Named(k, definition.Normalize(in.Named[k])))
	}
	return domain.ArgsOf(values...)
}

// Record is one JSON-lines response.
type Record struct {
	State    string `json:"state,omitempty"`
	Value    any    `json:"value,omitempty"`
	Virtual  bool   `json:"virtual,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewRunner creates a Runner over in and out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run reads input until EOF, "exit" or "quit", or until the machine finishes.
func (r *Runner) Run(ctx context.Context, m *Machine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if !m.Started() {
		if err := m.Start(ctx); err != nil {
			return err
		}
	}
	if r.JSON {
		return r.runJSON(ctx, m)
	}

	render := r.Renderer
	if render == nil {
		render = func(s domain.State) string { return s.String() }
	}

	lines := newLineReader(r.Input)
	for !m.Finished() {
		if !r.Headless {
			fmt.Fprintf(r.Output, "[%s] > ", render(m.Current()))
		}
		line, err := lines.next()
		if errors.Is(err, io.EOF) {
			// Graceful exit on EOF
			break
		}
		if err != nil && !rejected(err) {
			return fmt.Errorf("input error: %w", err)
		}
		if err == nil && (line == "exit" || line == "quit") {
			break
		}

		var next domain.State
		if err == nil {
			next, err = m.Advance(ctx, ParseArgs(line))
		}
		if err != nil {
			if r.Headless {
				return err
			}
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		if r.Headless && !m.Finished() {
			fmt.Fprintln(r.Output, render(next))
		}
	}

	if m.Finished() {
		fmt.Fprintln(r.Output, "finished")
	}
	return nil
}

func (r *Runner) runJSON(ctx context.Context, m *Machine) error {
	enc := json.NewEncoder(r.Output)
	emit := func(err error) error {
		cur := m.Current()
		rec := Record{State: cur.Name(), Value: cur.Value(), Virtual: cur.Virtual(), Finished: m.Finished()}
		if err != nil {
			rec.Error = err.Error()
		}
		return enc.Encode(rec)
	}
	if err := emit(nil); err != nil {
		return err
	}

	lines := newLineReader(r.Input)
	for !m.Finished() {
		line, err := lines.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !rejected(err) {
			return fmt.Errorf("input error: %w", err)
		}
		if err == nil && (line == "exit" || line == "quit") {
			return nil
		}
		var args domain.Args
		if err == nil {
			args, err = parseJSONLine(line)
		}
		if err == nil {
			_, err = m.Advance(ctx, args)
		}
		if err := emit(err); err != nil {
			return err
		}
	}
	return nil
}

// lineReader yields sanitized input lines. Lines above the input limit are
// consumed without being buffered whole.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next trimmed, sanitized line. io.EOF means no input is left;
// errors for which rejected is true concern this line only.
func (l *lineReader) next() (string, error) {
	limit := maxInputSize()
	var (
		buf  []byte
		size int
	)
	for {
		chunk, err := l.r.ReadSlice('\n')
		size += len(chunk)
		if size <= limit+len("\r\n") {
			buf = append(buf, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || size == 0) {
			return "", err
		}
		break
	}
	if size > limit+len("\r\n") {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, size, limit)
	}
	return SanitizeInput(strings.TrimSpace(string(buf)))
}

// rejected reports whether err refuses a single line rather than the input.
func rejected(err error) bool {
	return errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8)
}

func parseJSONLine(line string) (domain.Args, error) {
	switch {
	case strings.HasPrefix(line, "{"):
		dec := json.NewDecoder(bytes.NewReader([]byte(line)))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		var in Input
		if err := dec.Decode(&in); err != nil {
			return domain.Args{}, fmt.Errorf("invalid input record: %w", err)
		}
		return in.ToArgs(), nil
	case strings.HasPrefix(line, `"`):
		var s string
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return domain.Args{}, fmt.Errorf("invalid input string: %w", err)
		}
		return ParseArgs(s), nil
	default:
		return ParseArgs(line), nil
	}
}

// ParseArgs turns "true mode=fast n=3" into Args{true; mode: "fast", n: 3}.
func ParseArgs(line string) domain.Args {
	var values []any
	for _, field := range strings.Fields(line) {
		if k, v, ok := strings.Cut(field, "="); ok && k != "" {
			values = append(values, domain.Named(k, definition.ParseScalar(v)))
			continue
		}
		values = append(values, definition.ParseScalar(field))
	}
	return domain.ArgsOf(values...)
}
