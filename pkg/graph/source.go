package graph

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Source discovers resolver branches by reading the Go source of their
// functions. A resolver is matched to the function (or method) named by
// Resolver.SymbolName; each return statement must be a recognisable
// To(...), ChainTo(...) or End() call, optionally followed by .Annotate("...").
// Returns whose error result is not nil are treated as error paths.
type Source struct {
	fset  *token.FileSet
	funcs map[string]*ast.FuncDecl
	// Aliases maps a Go identifier to a state name, for expressions such as
	// To(stateC) whose identifier does not spell the state name.
	Aliases map[string]string
}

// NewSource creates an empty Source.
func NewSource() *Source {
	return &Source{
		fset:    token.NewFileSet(),
		funcs:   map[string]*ast.FuncDecl{},
		Aliases: map[string]string{},
	}
}

// LoadSource parses the given files or directories (non-test .go files only).
func LoadSource(paths ...string) (*Source, error) {
	s := NewSource()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = s.AddDir(p)
		} else {
			err = s.AddFile(p, nil)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddFile parses one file. src follows go/parser.ParseFile: nil reads filename.
func (s *Source) AddFile(filename string, src any) error {
	f, err := parser.ParseFile(s.fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		s.funcs[fn.Name.Name] = fn
		if recv := receiverName(fn); recv != "" {
			s.funcs[recv+"."+fn.Name.Name] = fn
		}
	}
	return nil
}

// AddDir parses the non-test Go files directly inside dir.
func (s *Source) AddDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if err := s.AddFile(filepath.Join(dir, name), nil); err != nil {
			return err
		}
	}
	return nil
}

// AddFS parses every non-test Go file of fsys matching pattern.
func (s *Source) AddFS(fsys fs.FS, pattern string) error {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if strings.HasSuffix(m, "_test.go") {
			continue
		}
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return err
		}
		if err := s.AddFile(m, data); err != nil {
			return err
		}
	}
	return nil
}

// Branches implements Strategy.
func (s *Source) Branches(t *domain.Table, r *domain.Resolver) ([]domain.Branch, error) {
	fn, err := s.lookup(r.SymbolName())
	if err != nil {
		return nil, fmt.Errorf("%w: resolver %q: %v", domain.ErrExtractionAmbiguity, r.ID, err)
	}

	w := &returnWalker{src: s, table: t, fn: fn}
	ast.Inspect(fn.Body, w.visit)
	if len(w.errs) > 0 {
		return nil, errors.Join(w.errs...)
	}
	if len(w.branches) == 0 {
		return nil, fmt.Errorf("%w: %s: resolver %q has no return statements", domain.ErrExtractionAmbiguity, s.fset.Position(fn.Pos()), r.ID)
	}
	return w.branches, nil
}

// lookup finds symbol exactly, then by normalized name. Several normalized
// matches are ambiguous.
func (s *Source) lookup(symbol string) (*ast.FuncDecl, error) {
	if fn, ok := s.funcs[symbol]; ok {
		return fn, nil
	}
	want := normalize(symbol)
	var names []string
	for name := range s.funcs {
		if normalize(name) == want {
			names = append(names, name)
		}
	}
	switch len(names) {
	case 0:
		return nil, fmt.Errorf("no source for symbol %q", symbol)
	case 1:
		return s.funcs[names[0]], nil
	default:
		slices.Sort(names)
		return nil, fmt.Errorf("symbol %q matches %s", symbol, strings.Join(names, ", "))
	}
}

type returnWalker struct {
	src      *Source
	table    *domain.Table
	fn       *ast.FuncDecl
	stack    []ast.Node
	branches []domain.Branch
	errs     []error
}

func (w *returnWalker) visit(n ast.Node) bool {
	if n == nil {
		w.stack = w.stack[:len(w.stack)-1]
		return false
	}
	if _, ok := n.(*ast.FuncLit); ok {
		// Returns inside closures belong to the closure.
		return false
	}
	w.stack = append(w.stack, n)
	if ret, ok := n.(*ast.ReturnStmt); ok {
		w.handle(ret)
	}
	return true
}

func (w *returnWalker) handle(ret *ast.ReturnStmt) {
	if len(ret.Results) == 0 {
		w.fail(ret, "bare return")
		return
	}
	if len(ret.Results) == 2 && !isNil(ret.Results[1]) {
		return
	}

	target, err := w.target(ret.Results[0])
	if err != nil {
		w.errs = append(w.errs, fmt.Errorf("%w: %s: %v", domain.ErrExtractionAmbiguity, w.src.fset.Position(ret.Pos()), err))
		return
	}
	w.branches = append(w.branches, domain.Branch{Label: w.guard(ret), Target: target})
}

func (w *returnWalker) fail(n ast.Node, msg string) {
	w.errs = append(w.errs, fmt.Errorf("%w: %s: %s", domain.ErrExtractionAmbiguity, w.src.fset.Position(n.Pos()), msg))
}

// target evaluates a return expression statically.
func (w *returnWalker) target(expr ast.Expr) (domain.Target, error) {
	call, ok := unparen(expr).(*ast.CallExpr)
	if !ok {
		return domain.Target{}, fmt.Errorf("cannot resolve %s", types.ExprString(expr))
	}

	if sel, ok := call.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "Annotate" {
		if len(call.Args) != 1 {
			return domain.Target{}, fmt.Errorf("Annotate takes one argument")
		}
		note, ok := stringLit(call.Args[0])
		if !ok {
			return domain.Target{}, fmt.Errorf("annotation %s is not a string literal", types.ExprString(call.Args[0]))
		}
		inner, err := w.target(sel.X)
		if err != nil {
			return domain.Target{}, err
		}
		return inner.Annotate(note), nil
	}

	switch funcName(call.Fun) {
	case "End":
		return domain.End(), nil
	case "ChainTo":
		if len(call.Args) != 1 {
			return domain.Target{}, fmt.Errorf("ChainTo takes one argument")
		}
		id, ok := stringLit(unconvert(call.Args[0]))
		if !ok {
			return domain.Target{}, fmt.Errorf("chain target %s is not a string literal", types.ExprString(call.Args[0]))
		}
		return domain.ChainTo(domain.ResolverID(id)), nil
	case "To":
		if len(call.Args) != 1 {
			return domain.Target{}, fmt.Errorf("To takes one argument")
		}
		s, err := w.state(call.Args[0])
		if err != nil {
			return domain.Target{}, err
		}
		return domain.To(s), nil
	default:
		return domain.Target{}, fmt.Errorf("cannot resolve %s", types.ExprString(expr))
	}
}

// state resolves the argument of To to a registered state.
func (w *returnWalker) state(expr ast.Expr) (domain.State, error) {
	reg := w.table.Registry()
	var name string

	switch x := unparen(expr).(type) {
	case *ast.CallExpr:
		// reg.MustByName("c"), domain.NewState("c", ...)
		switch funcName(x.Fun) {
		case "MustByName", "ByName", "NewState":
			if len(x.Args) > 0 {
				name, _ = stringLit(x.Args[0])
			}
		}
	case *ast.Ident:
		name = x.Name
	case *ast.SelectorExpr:
		name = x.Sel.Name
	}
	if name == "" {
		return domain.State{}, fmt.Errorf("cannot resolve state %s", types.ExprString(expr))
	}

	if alias, ok := w.src.Aliases[name]; ok {
		name = alias
	}
	if s, ok := reg.ByName(name); ok {
		return s, nil
	}
	want := normalize(name)
	for _, s := range reg.States() {
		if normalize(s.Name()) == want {
			return s, nil
		}
	}
	return domain.State{}, fmt.Errorf("%s does not name a registered state", types.ExprString(expr))
}

// guard describes the innermost condition enclosing ret.
func (w *returnWalker) guard(ret *ast.ReturnStmt) string {
	for i := len(w.stack) - 1; i >= 0; i-- {
		switch n := w.stack[i].(type) {
		case *ast.IfStmt:
			if within(ret, n.Body) {
				return types.ExprString(n.Cond)
			}
			return "else"
		case *ast.CaseClause:
			if len(n.List) == 0 {
				return "default"
			}
			parts := make([]string, len(n.List))
			for j, e := range n.List {
				parts[j] = types.ExprString(e)
			}
			return "case " + strings.Join(parts, ", ")
		}
	}
	return ""
}

func within(n ast.Node, block *ast.BlockStmt) bool {
	return block != nil && n.Pos() >= block.Pos() && n.End() <= block.End()
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if idx, ok := t.(*ast.IndexExpr); ok {
		t = idx.X
	}
	if id, ok := t.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func funcName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	}
	return ""
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// unconvert strips a single conversion such as domain.ResolverID("x").
func unconvert(e ast.Expr) ast.Expr {
	if call, ok := unparen(e).(*ast.CallExpr); ok && len(call.Args) == 1 {
		return call.Args[0]
	}
	return e
}

func stringLit(e ast.Expr) (string, bool) {
	lit, ok := unparen(e).(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	return s, err == nil
}

func isNil(e ast.Expr) bool {
	id, ok := unparen(e).(*ast.Ident)
	return ok && id.Name == "nil"
}

// normalize folds case and drops underscores so preC, PreC and pre_c match.
func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
