package federation

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter decides which decoded messages reach OnMessage. The expression sees
// two variables: protocol (string) and content (the decoded payload).
//
//	protocol == "activitypub" && content.actor != nil
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a boolean filter expression.
// An empty source returns a nil Filter, which accepts everything.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(filterEnv("", map[string]any{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match reports whether msg passes the filter. A nil Filter matches everything.
func (f *Filter) Match(msg Message) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, filterEnv(msg.Protocol, msg.Content))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func filterEnv(protocol ProtocolName, content any) map[string]any {
	return map[string]any{
		"protocol": string(protocol),
		"content":  content,
	}
}
