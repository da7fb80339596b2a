// Package parser implements a precedence-climbing recursive-descent parser
// over the lexer's token stream, producing an arena-allocated ast.Tree.
//
// The precedence table (low to high) follows spec.md §4.2:
//
//	0  implies (right), | (left)
//	1  or, xor (left)
//	2  and (left)
//	3  & (left)
//	4  =, !=, ~, !~, in, contains, is, as (left)
//	5  <, <=, >, >= (left)
//	6  +, - (left)
//	7  *, /, div, mod (left)
//	10 unary +, -, not (prefix)
//	11 ., [...], (...) (postfix)
package parser

import (
	"strings"

	"fhirpath-go/ast"
	"fhirpath-go/diagnostics"
	"fhirpath-go/lexer"
)

// Parser consumes one token stream and builds one ast.Tree. It recovers only
// to the extent of producing a single diagnostic; it never returns a partial
// tree.
type Parser struct {
	toks []lexer.Token
	pos  int
	tree *ast.Tree
}

// Parse lexes and parses source into a Tree, or returns the first
// lex/parse error encountered.
func Parse(source string) (*ast.Tree, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, tree: ast.NewTree(source)}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, p.errorf(diagnostics.ParseError, "unexpected trailing input %q", p.cur().Text)
	}
	p.tree.Root = root
	return p.tree, nil
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.errorf(diagnostics.ParseError, "expected %s, found %q", what, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(code diagnostics.Code, format string, args ...any) *diagnostics.Error {
	return diagnostics.Newf(code, format, args...).WithSpan(p.cur().Span)
}

func (p *Parser) alloc(n ast.Node) ast.NodeID { return p.tree.Alloc(n) }

// parseExpr is the single recursion entry; minPrec is retained for a future
// generic climber but the grammar is implemented level-by-level below, which
// reads closer to the precedence table above than a generic loop would.
func (p *Parser) parseExpr(minPrec int) (ast.NodeID, error) {
	return p.parseImpliesOrUnion()
}

// level 0: implies (right-assoc) and | (left-assoc) share the lowest level.
func (p *Parser) parseImpliesOrUnion() (ast.NodeID, error) {
	left, err := p.parseOrXor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.cur().Kind {
		case lexer.KwImplies:
			tok := p.advance()
			right, err := p.parseImpliesOrUnion() // right-associative
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpImplies, Left: left, Right: right, Span: tok.Span})
		case lexer.Pipe:
			p.advance()
			right, err := p.parseOrXor()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindUnion, Base: left, Member: right})
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseOrXor() (ast.NodeID, error) {
	left, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for p.at(lexer.KwOr) || p.at(lexer.KwXor) {
		op := ast.OpOr
		if p.at(lexer.KwXor) {
			op = ast.OpXor
		}
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.NodeID, error) {
	left, err := p.parseConcat()
	if err != nil {
		return 0, err
	}
	for p.at(lexer.KwAnd) {
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpAnd, Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseConcat() (ast.NodeID, error) {
	left, err := p.parseEquality()
	if err != nil {
		return 0, err
	}
	for p.at(lexer.Amp) {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpConcat, Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.NodeID, error) {
	left, err := p.parseRelational()
	if err != nil {
		return 0, err
	}
	for {
		switch p.cur().Kind {
		case lexer.Eq:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpEq, Left: left, Right: right})
		case lexer.Neq:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpNeq, Left: left, Right: right})
		case lexer.Tilde:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpEquiv, Left: left, Right: right})
		case lexer.NTilde:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpNEquiv, Left: left, Right: right})
		case lexer.KwIn:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpIn, Left: left, Right: right})
		case lexer.KwContains:
			p.advance()
			right, err := p.parseRelational()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: ast.OpContains, Left: left, Right: right})
		case lexer.KwIs:
			p.advance()
			typeName, err := p.parseTypeName()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindTypeCheck, Expr: left, TypeName: typeName})
		case lexer.KwAs:
			p.advance()
			typeName, err := p.parseTypeName()
			if err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindTypeCast, Expr: left, TypeName: typeName})
		default:
			return left, nil
		}
	}
}

// parseTypeName parses a (possibly dotted, namespace-qualified) type name:
// Identifier ('.' Identifier)*
func (p *Parser) parseTypeName() (string, error) {
	tok, err := p.identLike()
	if err != nil {
		return "", err
	}
	name := tok
	for p.at(lexer.Dot) {
		// only consume the dot if followed by an identifier (part of the
		// qualified type name, e.g. "FHIR.Patient")
		save := p.pos
		p.advance()
		next, err := p.identLike()
		if err != nil {
			p.pos = save
			break
		}
		name += "." + next
	}
	return name, nil
}

// identLike accepts an Ident or a DelimitedIdent; keyword tokens are not
// accepted in identifier position.
func (p *Parser) identLike() (string, error) {
	if p.at(lexer.Ident) || p.at(lexer.DelimitedIdent) {
		return p.advance().Text, nil
	}
	return "", p.errorf(diagnostics.ParseError, "expected identifier, found %q", p.cur().Text)
}

func (p *Parser) parseRelational() (ast.NodeID, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	for {
		var op ast.Operator
		switch p.cur().Kind {
		case lexer.Lt:
			op = ast.OpLt
		case lexer.Lte:
			op = ast.OpLte
		case lexer.Gt:
			op = ast.OpGt
		case lexer.Gte:
			op = ast.OpGte
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
	}
}

func (p *Parser) parseAdditive() (ast.NodeID, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := ast.OpAdd
		if p.at(lexer.Minus) {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.NodeID, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		var op ast.Operator
		switch p.cur().Kind {
		case lexer.Star:
			op = ast.OpMul
		case lexer.Slash:
			op = ast.OpDiv
		case lexer.KwDiv:
			op = ast.OpIntDiv
		case lexer.KwMod:
			op = ast.OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		left = p.alloc(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
	}
}

func (p *Parser) parseUnary() (ast.NodeID, error) {
	switch p.cur().Kind {
	case lexer.Plus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.alloc(ast.Node{Kind: ast.KindUnary, Op: ast.OpUnaryPlus, Left: operand}), nil
	case lexer.Minus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.alloc(ast.Node{Kind: ast.KindUnary, Op: ast.OpUnaryMinus, Left: operand}), nil
	case lexer.KwNot:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.alloc(ast.Node{Kind: ast.KindUnary, Op: ast.OpNot, Left: operand}), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles ., [index], and trailing (...) invocation chaining at
// the highest precedence level.
func (p *Parser) parsePostfix() (ast.NodeID, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.cur().Kind {
		case lexer.Dot:
			p.advance()
			member, err := p.parseMemberAccess(left)
			if err != nil {
				return 0, err
			}
			left = member
		case lexer.LBracket:
			p.advance()
			idx, err := p.parseExpr(0)
			if err != nil {
				return 0, err
			}
			if _, err := p.expect(lexer.RBracket, "]"); err != nil {
				return 0, err
			}
			left = p.alloc(ast.Node{Kind: ast.KindIndex, Base: left, Member: idx})
		default:
			return left, nil
		}
	}
}

// parseMemberAccess parses the identifier (and optional argument list)
// immediately after a '.', producing Path or Invocation nodes rooted at
// base.
func (p *Parser) parseMemberAccess(base ast.NodeID) (ast.NodeID, error) {
	name, err := p.identLike()
	if err != nil {
		return 0, err
	}
	if p.at(lexer.LParen) {
		args, err := p.parseArgList(name)
		if err != nil {
			return 0, err
		}
		return p.alloc(ast.Node{Kind: ast.KindInvocation, Base: base, Name: name, Args: args}), nil
	}
	memberID := p.alloc(ast.Node{Kind: ast.KindIdentifier, Name: name})
	return p.alloc(ast.Node{Kind: ast.KindPath, Base: base, Member: memberID}), nil
}

// parseArgList parses the '(' arg (',' arg)* ')' following a function name,
// wrapping lambda-taking argument positions in Lambda nodes.
func (p *Parser) parseArgList(funcName string) ([]ast.NodeID, error) {
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	var args []ast.NodeID
	if !p.at(lexer.RParen) {
		for {
			idx := len(args)
			argExpr, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if isLambdaArg(funcName, idx) {
				argExpr = p.alloc(ast.Node{Kind: ast.KindLambda, Body: argExpr})
			}
			args = append(args, argExpr)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.NodeID, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.LParen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(lexer.RParen, ")"); err != nil {
			return 0, err
		}
		return inner, nil
	case lexer.LBrace:
		// empty collection literal: {}
		p.advance()
		if _, err := p.expect(lexer.RBrace, "}"); err != nil {
			return 0, err
		}
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitEmpty}), nil
	case lexer.KwTrue:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitBoolean, LitText: "true", Span: tok.Span}), nil
	case lexer.KwFalse:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitBoolean, LitText: "false", Span: tok.Span}), nil
	case lexer.StringLit:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitString, LitText: tok.Text, Span: tok.Span}), nil
	case lexer.IntegerLit:
		p.advance()
		return p.parseNumberMaybeQuantity(tok, ast.LitInteger)
	case lexer.DecimalLit:
		p.advance()
		return p.parseNumberMaybeQuantity(tok, ast.LitDecimal)
	case lexer.DateLit:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitDate, LitText: tok.Text, Span: tok.Span}), nil
	case lexer.DateTimeLit:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitDateTime, LitText: tok.Text, Span: tok.Span}), nil
	case lexer.TimeLit:
		p.advance()
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitTime, LitText: tok.Text, Span: tok.Span}), nil
	case lexer.Dollar:
		p.advance()
		name, err := p.identLike()
		if err != nil {
			return 0, err
		}
		switch name {
		case "this", "index", "total":
			return p.alloc(ast.Node{Kind: ast.KindVariable, Name: name, Span: tok.Span}), nil
		default:
			return 0, p.errorf(diagnostics.ParseError, "unknown special variable $%s", name)
		}
	case lexer.Percent:
		p.advance()
		var name string
		if p.at(lexer.StringLit) {
			name = p.advance().Text
		} else {
			n, err := p.identLike()
			if err != nil {
				return 0, err
			}
			name = n
		}
		return p.alloc(ast.Node{Kind: ast.KindVariable, Name: name, Span: tok.Span}), nil
	case lexer.Ident, lexer.DelimitedIdent:
		p.advance()
		name := tok.Text
		if p.at(lexer.LParen) {
			args, err := p.parseArgList(name)
			if err != nil {
				return 0, err
			}
			return p.alloc(ast.Node{Kind: ast.KindFunctionCall, Name: name, Args: args, Span: tok.Span}), nil
		}
		return p.alloc(ast.Node{Kind: ast.KindIdentifier, Name: name, Span: tok.Span}), nil
	default:
		return 0, p.errorf(diagnostics.ParseError, "unexpected token %q", tok.Text)
	}
}

// parseNumberMaybeQuantity folds a trailing unit (quoted UCUM string or a
// calendar-duration keyword like "days") into a Quantity literal.
func (p *Parser) parseNumberMaybeQuantity(numTok lexer.Token, kind ast.LiteralKind) (ast.NodeID, error) {
	unit, ok := p.tryParseUnit()
	if !ok {
		return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: kind, LitText: numTok.Text, Span: numTok.Span}), nil
	}
	return p.alloc(ast.Node{Kind: ast.KindLiteral, LitKind: ast.LitQuantity, LitText: numTok.Text, LitUnit: unit, Span: numTok.Span}), nil
}

var calendarUnitWords = map[string]bool{
	"year": true, "years": true, "month": true, "months": true,
	"week": true, "weeks": true, "day": true, "days": true,
	"hour": true, "hours": true, "minute": true, "minutes": true,
	"second": true, "seconds": true, "millisecond": true, "milliseconds": true,
}

func (p *Parser) tryParseUnit() (string, bool) {
	switch p.cur().Kind {
	case lexer.StringLit:
		return p.advance().Text, true
	case lexer.Ident:
		if calendarUnitWords[strings.ToLower(p.cur().Text)] {
			return p.advance().Text, true
		}
		return "", false
	default:
		return "", false
	}
}
