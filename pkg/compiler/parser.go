package compiler

import (
	"strconv"
	"strings"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// Parse consumes toks (as produced by pkg/lexer) and populates m with the
// parsed AST, setting m.TopLevel to the ids of the top-level forms.
// Grounded on original_source/src/parser.rs's Manager-based (newer
// dialect) recursive-descent parser, adapted from a Peekable<Drain> token
// iterator to a plain slice cursor.
func Parse(m *Manager, toks []lexer.Token) error {
	p := &parser{m: m, toks: toks}
	var top []SexprId
	for p.more() {
		id, err := p.parseSexpr()
		if err != nil {
			return err
		}
		top = append(top, id)
	}
	m.TopLevel = top
	return nil
}

type parser struct {
	m    *Manager
	toks []lexer.Token
	pos  int
}

func (p *parser) more() bool { return p.pos < len(p.toks) }

func (p *parser) peek() (lexer.Token, bool) {
	if !p.more() {
		return lexer.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) advance() (lexer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) text(tok lexer.Token) string { return tok.Text(p.m.Source) }

// parseSexpr parses one s-expression: an atom or a parenthesized compound.
func (p *parser) parseSexpr() (SexprId, error) {
	tok, ok := p.advance()
	if !ok {
		return 0, NewDiag("unexpected end of input while parsing an expression")
	}
	text := p.text(tok)

	if text == ")" {
		return 0, NewDiagAt("un-paired closing parenthesis", tok)
	}

	if text != "(" {
		kind, data, ok := p.classifyAtom(text)
		if !ok {
			return 0, NewDiagAt("not a recognized keyword, literal, or identifier", tok)
		}
		return p.m.NewNode(kind, tok, data), nil
	}

	// compound
	head, ok := p.peek()
	if !ok {
		return 0, NewDiagAt("unclosed s-expression", tok)
	}
	headText := p.text(head)
	switch headText {
	case "(", ")":
		return 0, NewDiagAt("illegal head of s-expression", head)
	case "func":
		p.pos++
		return p.parseFuncDef(head)
	case "struct":
		p.pos++
		return p.parseStructDef(head)
	}
	p.pos++ // consume head

	var tail []SexprId
	for {
		next, ok := p.peek()
		if !ok {
			return 0, NewDiagAt("unclosed s-expression", tok)
		}
		if p.text(next) == ")" {
			p.pos++ // consume closing paren
			break
		}
		id, err := p.parseSexpr()
		if err != nil {
			return 0, err
		}
		tail = append(tail, id)
	}

	kind, data, err := p.makeCompound(head, headText, tail)
	if err != nil {
		return 0, err
	}
	return p.m.NewNode(kind, head, data), nil
}

func (p *parser) makeCompound(head lexer.Token, name string, tail []SexprId) (Kind, any, error) {
	switch name {
	case "declare":
		if len(tail) < 3 {
			return 0, nil, NewDiagAt("declare expected at least 3 arguments", head)
		}
		varName, err := p.getIdent(tail[0])
		if err != nil {
			return 0, nil, err
		}
		init := tail[1]
		body := p.m.NewNode(KindBlock, head, BlockData{Stmts: tail[2:]})
		return KindDeclare, DeclareData{Name: varName, Init: init, Body: body, BodyScope: NoScope}, nil

	case "assign":
		if len(tail) != 2 {
			return 0, nil, NewDiagAt("assign expected exactly 2 arguments", head)
		}
		varName, err := p.getIdent(tail[0])
		if err != nil {
			return 0, nil, err
		}
		return KindAssign, AssignData{Name: varName, Expr: tail[1]}, nil

	case "if":
		if len(tail) != 3 {
			return 0, nil, NewDiagAt("if expected exactly 3 arguments", head)
		}
		return KindIfSwitch, IfSwitchData{Pred: tail[0], Then: tail[1], Else: tail[2]}, nil

	case "while":
		if len(tail) < 1 {
			return 0, nil, NewDiagAt("while expected at least 1 argument", head)
		}
		body := p.m.NewNode(KindBlock, head, BlockData{Stmts: tail[1:]})
		return KindWhileLoop, WhileLoopData{Pred: tail[0], Body: body}, nil

	case "get-field":
		if len(tail) != 2 {
			return 0, nil, NewDiagAt("get-field expected exactly 2 arguments", head)
		}
		field, err := p.getIdent(tail[1])
		if err != nil {
			return 0, nil, err
		}
		return KindStructGet, StructGetData{Expr: tail[0], Field: field}, nil

	case "set-field":
		if len(tail) != 3 {
			return 0, nil, NewDiagAt("set-field expected exactly 3 arguments", head)
		}
		field, err := p.getIdent(tail[1])
		if err != nil {
			return 0, nil, err
		}
		return KindStructSet, StructSetData{Expr: tail[0], Field: field, Value: tail[2]}, nil

	case "format":
		return KindFormat, FormatData{Exprs: tail}, nil

	case "block":
		return KindBlock, BlockData{Stmts: tail}, nil

	case "list":
		return KindList, ListData{Elements: tail}, nil

	case "get":
		if len(tail) != 2 {
			return 0, nil, NewDiagAt("get expected exactly 2 arguments", head)
		}
		return KindListGet, ListGetData{List: tail[0], Index: tail[1]}, nil

	case "set":
		if len(tail) != 3 {
			return 0, nil, NewDiagAt("set expected exactly 3 arguments", head)
		}
		return KindListSet, ListSetData{List: tail[0], Index: tail[1], Elem: tail[2]}, nil

	default:
		return KindOther, OtherData{Name: name, Args: tail}, nil
	}
}

func (p *parser) parseStructDef(head lexer.Token) (SexprId, error) {
	nameTok, ok := p.advance()
	if !ok {
		return 0, NewDiagAt("unexpected end of input while scanning struct definition: missing a name", head)
	}
	name := p.text(nameTok)
	if !isIdentifierText(name) {
		return 0, NewDiagAt("invalid struct name: must be a proper identifier", nameTok)
	}

	fieldNames, fieldTypes, err := p.parseNameTypePairsUntil(head, ")")
	if err != nil {
		return 0, err
	}
	if !hasUniqueStrings(fieldNames) {
		return 0, NewDiagAt("struct field names must be pairwise distinct", head)
	}

	id := p.m.RegisterStruct(StructDecl{Name: name, FieldNames: fieldNames, FieldTypes: fieldTypes})
	return p.m.NewNode(KindStructDef, head, StructDefData{StructID: id}), nil
}

func (p *parser) parseFuncDef(head lexer.Token) (SexprId, error) {
	nameTok, ok := p.advance()
	if !ok {
		return 0, NewDiagAt("unexpected end of input while scanning function definition: missing a name", head)
	}
	name := p.text(nameTok)
	if !isIdentifierText(name) {
		return 0, NewDiagAt("invalid function name: must be a proper identifier", nameTok)
	}

	argNames, argTypes, err := p.parseNameTypePairsUntil(head, "->")
	if err != nil {
		return 0, err
	}

	outTok, ok := p.advance()
	if !ok {
		return 0, NewDiagAt("unexpected end of input while scanning function definition (expected return type after ->)", head)
	}
	returnType := FutureType(p.text(outTok), outTok)

	var stmts []SexprId
	for {
		next, ok := p.peek()
		if !ok {
			return 0, NewDiagAt("unexpected end of input while scanning function definition: expected closing parenthesis", head)
		}
		if p.text(next) == ")" {
			p.pos++
			break
		}
		id, err := p.parseSexpr()
		if err != nil {
			return 0, err
		}
		stmts = append(stmts, id)
	}

	body := p.m.NewNode(KindBlock, head, BlockData{Stmts: stmts})
	funcID := p.m.RegisterFunc(FuncDecl{
		Name:       name,
		ArgNames:   argNames,
		ArgTypes:   argTypes,
		ReturnType: returnType,
		Body:       body,
	})
	return p.m.NewNode(KindFuncDef, head, FuncDefData{FuncID: funcID}), nil
}

// parseNameTypePairsUntil parses `name : type` triples until a token whose
// text equals closing is encountered (and consumed). Grounded on
// original_source/src/parser.rs::parse_name_type_pairs_until.
func (p *parser) parseNameTypePairsUntil(head lexer.Token, closing string) ([]string, []Type, error) {
	var names []string
	var types []Type
	for {
		first, ok := p.advance()
		if !ok {
			return nil, nil, NewDiagAt("expected argument name, found end of input", head)
		}
		if p.text(first) == closing {
			break
		}
		second, ok := p.advance()
		if !ok {
			return nil, nil, NewDiagAt("expected type separator `:`, found end of input", head)
		}
		if p.text(second) != ":" {
			return nil, nil, NewDiagAt("expected type separator `:`", second)
		}
		third, ok := p.advance()
		if !ok {
			return nil, nil, NewDiagAt("expected argument type, found end of input", first)
		}
		names = append(names, p.text(first))
		types = append(types, FutureType(p.text(third), third))
	}
	return names, types, nil
}

func (p *parser) getIdent(id SexprId) (string, error) {
	node := p.m.Node(id)
	if node.Kind != KindIdentifier {
		return "", NewDiagAt("expected an identifier", node.Tok)
	}
	return node.Data.(IdentifierData).Name, nil
}

// classifyAtom mirrors original_source/src/parser.rs::make_atom.
func (p *parser) classifyAtom(text string) (Kind, any, bool) {
	switch {
	case strings.HasPrefix(text, `"`):
		value := text
		if len(text) >= 2 {
			value = text[1 : len(text)-1]
		} else {
			value = ""
		}
		return KindStringLiteral, StringLiteralData{Value: value}, true
	case text == "true":
		return KindBooleLiteral, BooleLiteralData{Value: true}, true
	case text == "false":
		return KindBooleLiteral, BooleLiteralData{Value: false}, true
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return KindIntegerLiteral, IntegerLiteralData{Value: n}, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return KindRealLiteral, RealLiteralData{Value: f}, true
	}
	if isIdentifierText(text) {
		return KindIdentifier, IdentifierData{Name: text}, true
	}
	return 0, nil, false
}

// isIdentifierText reports whether text is a legal identifier: first rune
// non-numeric, remaining runes alphanumeric, '-', '_', '<', or '>'.
func isIdentifierText(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	if isDigit(runes[0]) {
		return false
	}
	for _, ch := range runes {
		if !(isAlnum(ch) || ch == '-' || ch == '_' || ch == '<' || ch == '>') {
			return false
		}
	}
	return true
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlnum(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || isDigit(ch) || ch == 'θ'
}

func hasUniqueStrings(items []string) bool {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			return false
		}
		seen[it] = struct{}{}
	}
	return true
}
