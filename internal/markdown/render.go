package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LinkResolver rewrites one link or image destination. It is total: any
// string in, any string out. It must perform no I/O, so that it can be
// called while the caller holds a read lock (the manifest's resolve_link
// is the production implementation).
type LinkResolver func(destination string) string

var resolverKey = parser.NewContextKey()

// linkRewriter is a parser.ASTTransformer that rewrites every link and
// image destination in place before rendering, grounded on the same
// AST-transform pattern a wiki-style goldmark renderer in the examples
// uses for its own link rewriting.
type linkRewriter struct{}

func (linkRewriter) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	resolve, _ := pc.Get(resolverKey).(LinkResolver)
	if resolve == nil {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			v.Destination = []byte(resolve(string(v.Destination)))
		case *ast.Image:
			v.Destination = []byte(resolve(string(v.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// Compiler renders Markdown bodies to HTML with GitHub-flavoured
// strikethrough and tables enabled.
type Compiler struct {
	md goldmark.Markdown
}

// NewCompiler constructs a Compiler. It is safe for concurrent use; each
// CompileToHTML call builds its own parser.Context.
func NewCompiler() *Compiler {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Table),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(linkRewriter{}, 100)),
		),
	)
	return &Compiler{md: md}
}

// CompileToHTML parses body as GitHub-flavoured Markdown and serializes it
// to HTML, rewriting every link and image destination through resolve on
// the parsed AST before it is rendered.
func (c *Compiler) CompileToHTML(body string, resolve LinkResolver) (string, error) {
	pc := parser.NewContext()
	pc.Set(resolverKey, resolve)

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(body), &buf, parser.WithContext(pc)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
