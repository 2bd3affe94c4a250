// Package parser implements a Pratt (precedence-climbing) parser that
// turns a token stream from internal/lexer into an internal/ast.Program.
package parser

import (
	"strconv"

	"github.com/dwsi-lang/dwsi/internal/ast"
	"github.com/dwsi-lang/dwsi/internal/errors"
	"github.com/dwsi-lang/dwsi/internal/lexer"
)

// Operator precedence levels, lowest to highest.
const (
	LOWEST int = iota
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	CALL
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:    OR,
	lexer.AND:   AND,
	lexer.EQ:    EQUALS,
	lexer.LT:    LESSGREATER,
	lexer.GT:    LESSGREATER,
	lexer.LE:    LESSGREATER,
	lexer.PLUS:  SUM,
	lexer.MINUS: SUM,
	lexer.SLASH: PRODUCT,
}

var binaryOps = map[lexer.TokenType]ast.Op{
	lexer.PLUS:  ast.OpAdd,
	lexer.MINUS: ast.OpSub,
	lexer.SLASH: ast.OpDiv,
	lexer.OR:    ast.OpOr,
	lexer.AND:   ast.OpAnd,
	lexer.GT:    ast.OpGreaterThan,
	lexer.LT:    ast.OpLessThan,
	lexer.LE:    ast.OpLessOrEqual,
	lexer.EQ:    ast.OpEqTo,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser builds an ast.Program from a lexer.Lexer's token stream,
// accumulating errors instead of stopping at the first one.
type Parser struct {
	l      *lexer.Lexer
	source string

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*errors.ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l. source is the original text, kept only so
// that parse errors can render a caret-annotated snippet.
func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{l: l, source: source}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:    p.parseIdentifierOrCall,
		lexer.INT:      p.parseIntegerLiteral,
		lexer.STRING:   p.parseStringLiteral,
		lexer.TRUE:     p.parseBooleanLiteral,
		lexer.FALSE:    p.parseBooleanLiteral,
		lexer.MINUS:    p.parseUnaryMinus,
		lexer.LPAREN:   p.parseGroupedExpression,
		lexer.LBRACKET: p.parseListLiteral,
		lexer.FN:       p.parseFunctionLiteral,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:  p.parseBinaryExpression,
		lexer.MINUS: p.parseBinaryExpression,
		lexer.SLASH: p.parseBinaryExpression,
		lexer.OR:    p.parseBinaryExpression,
		lexer.AND:   p.parseBinaryExpression,
		lexer.GT:    p.parseBinaryExpression,
		lexer.LT:    p.parseBinaryExpression,
		lexer.LE:    p.parseBinaryExpression,
		lexer.EQ:    p.parseBinaryExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns all parse errors accumulated so far.
func (p *Parser) Errors() []*errors.ParseError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors, errors.NewParseError(p.source, p.peekToken.Pos,
		"expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, errors.NewParseError(p.source, pos, format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseAssignStatement()
	case lexer.FN:
		return p.parseFuncStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.CLASS:
		return p.parseClassStatement()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.ASSIGN) {
			return p.parseReAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return block
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseAssignStatement() *ast.AssignStatement {
	stmt := &ast.AssignStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.Ascription = p.parseTypeAnnotation()
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseReAssignStatement() *ast.ReAssignStatement {
	name := p.curToken.Literal
	p.nextToken() // consume IDENT, cur is now '='
	stmt := &ast.ReAssignStatement{Token: p.curToken, Name: name}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseFuncStatement() ast.Statement {
	tok := p.curToken // 'fn'
	if p.peekTokenIs(lexer.LPAREN) {
		return p.parseFunctionLiteralStatement(tok)
	}

	stmt := &ast.FuncStatement{Token: tok}
	if !p.expectPeek(lexer.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.DOUBLECOLON) {
		return stmt
	}
	stmt.Parameters = p.parseBareParamList()

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.Ascription = p.parseTypeAnnotation()
	}

	stmt.Body = p.parseBlock()
	return stmt
}

// parseFunctionLiteralStatement handles a bare "fn(...) => { ... };" used
// as a statement, which the grammar treats as an ExpressionStatement.
func (p *Parser) parseFunctionLiteralStatement(tok lexer.Token) ast.Statement {
	expr := p.parseFunctionLiteral()
	stmt := &ast.ExpressionStatement{Token: tok, Expression: expr}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseBareParamList parses "p1,p2,p3" (no parens, comma-separated
// identifiers), as used after "fn name::".
func (p *Parser) parseBareParamList() []*ast.Identifier {
	var params []*ast.Identifier
	if p.peekTokenIs(lexer.COLON) || p.peekTokenIs(lexer.LBRACE) {
		return params
	}
	p.nextToken()
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}
	return params
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	then := p.parseBlock()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		elseBlock := p.parseBlock()
		return &ast.IfElseStatement{Token: tok, Condition: cond, Then: then, Else: elseBlock}
	}
	return &ast.IfStatement{Token: tok, Condition: cond, Then: then}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseClassStatement() *ast.ClassStatement {
	stmt := &ast.ClassStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseTypeAnnotation() *ast.TypeAnnotation {
	if p.curTokenIs(lexer.LBRACKET) {
		tok := p.curToken
		p.nextToken()
		elem := p.parseTypeAnnotation()
		p.expectPeek(lexer.RBRACKET)
		return &ast.TypeAnnotation{Token: tok, Name: "list", Elem: elem}
	}
	ta := &ast.TypeAnnotation{Token: p.curToken, Name: p.curToken.Literal}
	return ta
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.errorf(p.curToken.Pos, "no prefix parse function for %s", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierOrCall() ast.Expression {
	tok := p.curToken
	name := p.curToken.Literal
	if !p.peekTokenIs(lexer.LPAREN) {
		return &ast.Identifier{Token: tok, Value: name}
	}
	p.nextToken() // cur is now '('
	call := &ast.CallExpression{Token: p.curToken, Function: name}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.curToken
	value, err := strconv.ParseInt(tok.Literal, 10, 32)
	if err != nil {
		p.errorf(tok.Pos, "could not parse %q as integer", tok.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: tok, Value: int32(value)}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseUnaryMinus() ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	// Desugared as "0 - right" since the HIR has no dedicated unary node
	// and int subtraction already has the right runtime semantics.
	zero := &ast.IntegerLiteral{Token: tok, Value: 0}
	return &ast.BinaryExpression{Token: tok, Left: zero, Operator: ast.OpSub, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return expr
	}
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(lexer.RBRACKET)
	return list
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken // 'fn'
	if !p.expectPeek(lexer.LPAREN) {
		return &ast.FunctionLiteral{Token: tok}
	}
	fl := &ast.FunctionLiteral{Token: tok}
	fl.Parameters = p.parseParenParamList()
	if !p.expectPeek(lexer.ARROW) {
		return fl
	}
	fl.Body = p.parseBlock()
	return fl
}

// parseParenParamList parses "(p1, p2)" with the Parser positioned on the
// opening '(' and leaves it positioned on the closing ')'.
func (p *Parser) parseParenParamList() []*ast.Identifier {
	var params []*ast.Identifier
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}
	p.expectPeek(lexer.RPAREN)
	return params
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := binaryOps[tok.Type]
	precedence := precedences[tok.Type]
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: op, Right: right}
}
