package compiler

import (
	"strings"

	"github.com/aretw0/tandem/pkg/adapters/css"
	"github.com/aretw0/tandem/pkg/adapters/exprlang"
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
)

// MaxNestingDepth is the maximum allowed element and block nesting depth.
const MaxNestingDepth = 512

// voidTags never have children or a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true, ast.TagImport: true,
}

// Parser is responsible for converting document and stylesheet source into
// an AST. It implements ports.Parser.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseDocument parses markup. The root is always a Fragment.
func (p *Parser) ParseDocument(source string) (ast.Node, error) {
	s := &scanner{src: source}
	children, err := s.parseNodes("")
	if err != nil {
		return nil, err
	}
	if !s.eof() {
		return nil, s.errorf(s.pos, s.pos+2, "unexpected %q", s.src[s.pos:s.pos+2])
	}
	return &ast.Fragment{
		Children: children,
		Location: ast.Location{Start: 0, End: len(source)},
	}, nil
}

// ParseStyleSheet parses a standalone stylesheet.
func (p *Parser) ParseStyleSheet(source string) (*ast.StyleSheet, error) {
	sheet, err := css.Parse(source)
	if err != nil {
		return nil, &domain.Error{Kind: domain.ErrParse, Message: "invalid stylesheet", Err: err}
	}
	return sheet, nil
}

// scanner is a hand-written recursive descent parser over the raw source.
type scanner struct {
	src   string
	pos   int
	depth int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) hasPrefix(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

func (s *scanner) errorf(start, end int, format string, args ...any) error {
	if end > len(s.src) {
		end = len(s.src)
	}
	return domain.NewError(domain.ErrParse, "", format, args...).At(ast.Location{Start: start, End: end})
}

// tagAhead reports whether an opening tag starts at the current position. A
// '<' not followed by a letter is plain text.
func (s *scanner) tagAhead() bool {
	if !s.hasPrefix("<") || s.pos+1 >= len(s.src) {
		return false
	}
	c := s.src[s.pos+1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// parseNodes parses siblings until EOF, a closing tag or a block
// continuation. closing is the tag whose children are being parsed, empty at
// the root and inside blocks.
func (s *scanner) parseNodes(closing string) ([]ast.Node, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > MaxNestingDepth {
		return nil, s.errorf(s.pos, s.pos+1, "maximum nesting depth (%d) exceeded", MaxNestingDepth)
	}

	var nodes []ast.Node
	for !s.eof() {
		switch {
		case s.hasPrefix("</"), s.hasPrefix("{/"):
			return nodes, nil
		case s.hasPrefix("<!--"):
			node, err := s.parseComment()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case s.tagAhead():
			node, err := s.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case s.hasPrefix("{#"):
			node, err := s.parseBlock()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case s.hasPrefix("{"):
			node, err := s.parseSlot()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		default:
			if text := s.parseText(); text != nil {
				nodes = append(nodes, text)
			}
		}
	}
	if closing != "" {
		return nil, s.errorf(len(s.src), len(s.src), "unexpected end of input, expected </%s>", closing)
	}
	return nodes, nil
}

// parseText reads up to the next tag or brace. Whitespace-only text is not
// significant and yields nil.
func (s *scanner) parseText() ast.Node {
	start := s.pos
	for !s.eof() && s.src[s.pos] != '{' && !s.tagAhead() && !s.hasPrefix("</") && !s.hasPrefix("<!--") {
		s.pos++
	}
	value := s.src[start:s.pos]
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &ast.Text{Value: value, Location: ast.Location{Start: start, End: s.pos}}
}

func (s *scanner) parseComment() (ast.Node, error) {
	start := s.pos
	end := strings.Index(s.src[s.pos+4:], "-->")
	if end < 0 {
		return nil, s.errorf(start, len(s.src), "unterminated comment")
	}
	value := s.src[s.pos+4 : s.pos+4+end]
	s.pos += 4 + end + 3
	return &ast.Comment{Value: value, Location: ast.Location{Start: start, End: s.pos}}, nil
}

func (s *scanner) parseSlot() (ast.Node, error) {
	start := s.pos
	script, err := s.parseBraced()
	if err != nil {
		return nil, err
	}
	return &ast.Slot{Script: script, Location: ast.Location{Start: start, End: s.pos}}, nil
}

// parseBraced reads `{...}` at the current position and returns the inner
// source as an expression.
func (s *scanner) parseBraced() (ast.Expression, error) {
	start := s.pos
	inner, err := s.readBraced()
	if err != nil {
		return ast.Expression{}, err
	}
	return s.expression(inner, start+1)
}

func (s *scanner) expression(source string, offset int) (ast.Expression, error) {
	trimmed := strings.TrimSpace(source)
	loc := ast.Location{Start: offset, End: offset + len(source)}
	if trimmed == "" {
		return ast.Expression{}, s.errorf(loc.Start, loc.End, "empty expression")
	}
	if err := exprlang.Check(trimmed); err != nil {
		return ast.Expression{}, domain.NewError(domain.ErrParse, "", "invalid expression %q", trimmed).At(loc).Wrap(err)
	}
	return ast.Expression{Source: trimmed, Path: exprlang.ReferencePath(trimmed), Location: loc}, nil
}

// readBraced consumes a balanced `{...}` group, skipping braces inside string
// literals, and returns what is between the outer braces.
func (s *scanner) readBraced() (string, error) {
	start := s.pos
	depth := 0
	var quote byte
	for i := s.pos; i < len(s.src); i++ {
		c := s.src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s.pos = i + 1
				return s.src[start+1 : i], nil
			}
		}
	}
	return "", s.errorf(start, len(s.src), "unterminated {")
}

func (s *scanner) parseElement() (ast.Node, error) {
	start := s.pos
	s.pos++ // <
	name := s.readName()
	if name == "" {
		return nil, s.errorf(start, s.pos+1, "expected tag name")
	}

	attrs, selfClosing, err := s.parseAttributes(name)
	if err != nil {
		return nil, err
	}
	openTag := ast.Location{Start: start, End: s.pos}

	switch name {
	case ast.TagStyle:
		return s.parseStyle(attrs, start)
	case ast.TagScript:
		if selfClosing {
			break
		}
		return s.parseRawElement(name, attrs, start, openTag)
	}

	el := &ast.Element{TagName: name, Attributes: attrs, OpenTagLocation: openTag}
	if selfClosing || voidTags[name] {
		el.Location = openTag
		return el, nil
	}

	children, err := s.parseNodes(name)
	if err != nil {
		return nil, err
	}
	if !s.hasPrefix("</") {
		return nil, s.errorf(s.pos, s.pos+2, "unexpected block continuation inside <%s>", name)
	}
	if err := s.parseClosingTag(name); err != nil {
		return nil, err
	}
	el.Children = children
	el.Location = ast.Location{Start: start, End: s.pos}
	return el, nil
}

func (s *scanner) parseClosingTag(name string) error {
	start := s.pos
	s.pos += 2
	got := s.readName()
	s.skipSpace()
	if got != name || !s.hasPrefix(">") {
		return s.errorf(start, s.pos, "expected </%s>", name)
	}
	s.pos++
	return nil
}

// raw returns the source up to the closing tag and consumes it.
func (s *scanner) raw(name string, start int) (string, ast.Location, error) {
	closing := "</" + name
	end := strings.Index(s.src[s.pos:], closing)
	if end < 0 {
		return "", ast.Location{}, s.errorf(start, len(s.src), "unterminated <%s>", name)
	}
	bodyLoc := ast.Location{Start: s.pos, End: s.pos + end}
	body := s.src[bodyLoc.Start:bodyLoc.End]
	s.pos = bodyLoc.End
	if err := s.parseClosingTag(name); err != nil {
		return "", ast.Location{}, err
	}
	return body, bodyLoc, nil
}

func (s *scanner) parseStyle(attrs []ast.Attribute, start int) (ast.Node, error) {
	body, bodyLoc, err := s.raw(ast.TagStyle, start)
	if err != nil {
		return nil, err
	}
	sheet, err := css.Parse(body)
	if err != nil {
		return nil, domain.NewError(domain.ErrParse, "", "invalid stylesheet").At(bodyLoc).Wrap(err)
	}
	return &ast.StyleElement{
		Attributes: attrs,
		Sheet:      sheet,
		Location:   ast.Location{Start: start, End: s.pos},
	}, nil
}

func (s *scanner) parseRawElement(name string, attrs []ast.Attribute, start int, openTag ast.Location) (ast.Node, error) {
	body, bodyLoc, err := s.raw(name, start)
	if err != nil {
		return nil, err
	}
	el := &ast.Element{
		TagName:         name,
		Attributes:      attrs,
		OpenTagLocation: openTag,
		Location:        ast.Location{Start: start, End: s.pos},
	}
	if body != "" {
		el.Children = []ast.Node{&ast.Text{Value: body, Location: bodyLoc}}
	}
	return el, nil
}

// parseAttributes reads attributes up to and including `>` or `/>`.
func (s *scanner) parseAttributes(tag string) ([]ast.Attribute, bool, error) {
	var attrs []ast.Attribute
	for {
		s.skipSpace()
		switch {
		case s.eof():
			return nil, false, s.errorf(len(s.src), len(s.src), "unterminated <%s>", tag)
		case s.hasPrefix("/>"):
			s.pos += 2
			return attrs, true, nil
		case s.hasPrefix(">"):
			s.pos++
			return attrs, false, nil
		case s.hasPrefix("{"):
			start := s.pos
			ref, err := s.parseBraced()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, &ast.ShorthandAttribute{
				Reference: ref,
				Location:  ast.Location{Start: start, End: s.pos},
			})
		default:
			attr, err := s.parseKeyValue()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, attr)
		}
	}
}

func (s *scanner) parseKeyValue() (ast.Attribute, error) {
	start := s.pos
	name := s.readAttributeName()
	if name == "" {
		return nil, s.errorf(start, start+1, "unexpected %q in tag", s.src[start])
	}
	attr := &ast.KeyValueAttribute{Name: name}
	s.skipSpace()
	if !s.hasPrefix("=") {
		attr.Location = ast.Location{Start: start, End: start + len(name)}
		return attr, nil
	}
	s.pos++
	s.skipSpace()
	if s.eof() {
		return nil, s.errorf(start, s.pos, "missing value for attribute %s", name)
	}

	switch c := s.src[s.pos]; c {
	case '"', '\'':
		end := strings.IndexByte(s.src[s.pos+1:], c)
		if end < 0 {
			return nil, s.errorf(start, len(s.src), "unterminated attribute value")
		}
		attr.Value = &ast.StringValue{Value: s.src[s.pos+1 : s.pos+1+end]}
		s.pos += end + 2
	case '{':
		script, err := s.parseBraced()
		if err != nil {
			return nil, err
		}
		attr.Value = &ast.SlotValue{Script: script}
	default:
		vstart := s.pos
		for !s.eof() && !isSpace(s.src[s.pos]) && s.src[s.pos] != '>' && !s.hasPrefix("/>") {
			s.pos++
		}
		attr.Value = &ast.StringValue{Value: s.src[vstart:s.pos]}
	}
	attr.Location = ast.Location{Start: start, End: s.pos}
	return attr, nil
}

// parseBlock parses `{#if ...}` and `{#each ...}` including every
// continuation up to the closing `{/}`.
func (s *scanner) parseBlock() (ast.Node, error) {
	start := s.pos
	inner, err := s.readBraced()
	if err != nil {
		return nil, err
	}
	header := strings.TrimPrefix(inner, "#")
	keyword, rest, _ := strings.Cut(strings.TrimSpace(header), " ")
	offset := start + 1 + strings.Index(inner, rest)

	switch keyword {
	case "if":
		return s.parseConditional(rest, offset, start)
	case "each":
		return s.parseEach(rest, offset, start)
	}
	return nil, s.errorf(start, s.pos, "unknown block {#%s}", keyword)
}

func (s *scanner) parseConditional(condition string, offset, start int) (*ast.PassFailBlock, error) {
	cond, err := s.expression(condition, offset)
	if err != nil {
		return nil, err
	}
	body, err := s.parseBody(start)
	if err != nil {
		return nil, err
	}
	block := &ast.PassFailBlock{Condition: cond, Body: body}

	contStart := s.pos
	inner, err := s.readBraced()
	if err != nil {
		return nil, err
	}
	cont := strings.TrimSpace(strings.TrimPrefix(inner, "/"))
	switch {
	case cont == "":
	case cont == "else":
		finalBody, err := s.parseBody(contStart)
		if err != nil {
			return nil, err
		}
		if err := s.expectBlockEnd(contStart); err != nil {
			return nil, err
		}
		block.Fail = &ast.FinalBlock{Body: finalBody, Location: ast.Location{Start: contStart, End: s.pos}}
	case strings.HasPrefix(cont, "else if "):
		rest := strings.TrimPrefix(cont, "else if ")
		next, err := s.parseConditional(rest, contStart+1+strings.Index(inner, rest), contStart)
		if err != nil {
			return nil, err
		}
		block.Fail = next
	default:
		return nil, s.errorf(contStart, s.pos, "unexpected {/%s}", cont)
	}
	block.Location = ast.Location{Start: start, End: s.pos}
	return block, nil
}

func (s *scanner) parseEach(header string, offset, start int) (*ast.EachBlock, error) {
	source, names, ok := strings.Cut(header, " as ")
	if !ok {
		return nil, s.errorf(start, s.pos, "expected {#each source as value}")
	}
	src, err := s.expression(source, offset)
	if err != nil {
		return nil, err
	}
	valueName, keyName, _ := strings.Cut(names, ",")
	valueName, keyName = strings.TrimSpace(valueName), strings.TrimSpace(keyName)
	if !isIdentifier(valueName) || (keyName != "" && !isIdentifier(keyName)) {
		return nil, s.errorf(start, s.pos, "invalid loop variables %q", strings.TrimSpace(names))
	}

	body, err := s.parseBody(start)
	if err != nil {
		return nil, err
	}
	if err := s.expectBlockEnd(start); err != nil {
		return nil, err
	}
	return &ast.EachBlock{
		Source:    src,
		ValueName: valueName,
		KeyName:   keyName,
		Body:      body,
		Location:  ast.Location{Start: start, End: s.pos},
	}, nil
}

// parseBody parses a block body, which must be followed by a `{/...}`.
func (s *scanner) parseBody(blockStart int) (ast.Node, error) {
	bodyStart := s.pos
	children, err := s.parseNodes("")
	if err != nil {
		return nil, err
	}
	if !s.hasPrefix("{/") {
		if s.eof() {
			return nil, s.errorf(blockStart, len(s.src), "unterminated block")
		}
		return nil, s.errorf(s.pos, s.pos+2, "unexpected closing tag inside block")
	}
	return &ast.Fragment{Children: children, Location: ast.Location{Start: bodyStart, End: s.pos}}, nil
}

func (s *scanner) expectBlockEnd(blockStart int) error {
	start := s.pos
	inner, err := s.readBraced()
	if err != nil {
		return err
	}
	if strings.TrimSpace(inner) != "/" {
		return s.errorf(start, s.pos, "expected {/} to close block opened at %d", blockStart)
	}
	return nil
}

func (s *scanner) readName() string {
	start := s.pos
	for !s.eof() && isNameChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) readAttributeName() string {
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		if isSpace(c) || c == '=' || c == '>' || c == '{' || c == '"' || c == '\'' || s.hasPrefix("/>") {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' || c == '.' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '-' || c == '.' || c == ':' || !isNameChar(c) || (i == 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Position converts a byte offset into a 1-based line and column.
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	line = strings.Count(src[:offset], "\n") + 1
	col = offset - strings.LastIndex(src[:offset], "\n")
	return line, col
}
