// Package parser turns a lexed token stream into statement ASTs via
// recursive descent, with a precedence-climbing layer for WHERE predicates.
package parser

import (
	"fmt"

	"github.com/MIUTEpxx/sqlengine/ast"
	"github.com/MIUTEpxx/sqlengine/reader"
	"github.com/MIUTEpxx/sqlengine/token"
)

// ParseError reports a syntactic failure at a source position.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parser consumes a pre-lexed token slice and produces statement ASTs.
type Parser struct {
	toks []token.Token
	r    *reader.Slice[token.Type]
	pos  int // mirrors r's index; kept separately to index into toks for Pos()
}

// New builds a Parser over toks. toks need not include a trailing EOF; the
// parser treats running off the end of the slice as EOF.
func New(toks []token.Token) *Parser {
	types := make([]token.Type, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return &Parser{
		toks: toks,
		r:    reader.NewSlice(types, token.EOF),
	}
}

// Parse parses every statement in the token stream, each one terminated by
// a mandatory semicolon, until EOF.
func Parse(toks []token.Token) ([]ast.Statement, error) {
	p := New(toks)
	var stmts []ast.Statement
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

func (p *Parser) atEOF() bool {
	return p.r.EOF()
}

func (p *Parser) cur() token.Token {
	if p.atEOF() {
		if len(p.toks) == 0 {
			return token.Token{Type: token.EOF}
		}
		last := p.toks[len(p.toks)-1]
		return token.Token{Type: token.EOF, Pos: last.Pos}
	}
	return p.toks[p.pos]
}

// curIs asks the shared reader.Cursor whether the current token's type
// matches t, the same Peek(0)-based check the lexer makes over bytes.
func (p *Parser) curIs(t token.Type) bool {
	return p.r.Peek(0) == t
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	p.r.Next()
	return tok
}

// expect consumes the current token if it matches t, else reports an error.
func (p *Parser) expect(t token.Type) error {
	if !p.curIs(t) {
		return p.errorf("expected %s, got %s", t, p.cur().Type)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.cur().Pos, Message: fmt.Sprintf(format, args...)}
}

// parseIdent consumes an IDENTIFIER and returns its text.
func (p *Parser) parseIdent() (string, error) {
	if !p.curIs(token.IDENTIFIER) {
		return "", p.errorf("expected identifier, got %s", p.cur().Type)
	}
	return p.advance().Text, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDropTable()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.SELECT:
		return p.parseSelect()
	default:
		return nil, p.errorf("expected a statement, got %s", p.cur().Type)
	}
}

// parseCreateTable parses: CREATE TABLE name ( col-def (, col-def)* ) .
func (p *Parser) parseCreateTable() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // CREATE
	if err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var cols []*ast.ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CreateTable{StartPos: pos, Name: name, Columns: cols}, nil
}

func (p *Parser) parseColumnDef() (*ast.ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	typ, err := p.parseColumnType()
	if err != nil {
		return nil, err
	}
	var constraints []ast.Constraint
	for {
		switch p.cur().Type {
		case token.PRIMARY:
			p.advance()
			if err := p.expect(token.KEY); err != nil {
				return nil, err
			}
			constraints = append(constraints, ast.ConstraintPrimaryKey)
		case token.NOT:
			p.advance()
			if err := p.expect(token.NULL); err != nil {
				return nil, err
			}
			constraints = append(constraints, ast.ConstraintNotNull)
		case token.UNIQUE:
			p.advance()
			constraints = append(constraints, ast.ConstraintUnique)
		default:
			return &ast.ColumnDef{Name: name, Type: typ, Constraints: constraints}, nil
		}
	}
}

func (p *Parser) parseColumnType() (ast.ColumnType, error) {
	switch p.cur().Type {
	case token.INT:
		p.advance()
		return ast.ColumnType{Kind: ast.IntKind}, nil
	case token.VARCHAR:
		p.advance()
		length := 0
		if p.curIs(token.LPAREN) {
			p.advance()
			if !p.curIs(token.NUMBER) {
				return ast.ColumnType{}, p.errorf("expected a length, got %s", p.cur().Type)
			}
			length = int(p.advance().Int)
			if err := p.expect(token.RPAREN); err != nil {
				return ast.ColumnType{}, err
			}
		}
		return ast.ColumnType{Kind: ast.VarcharKind, Length: length}, nil
	default:
		return ast.ColumnType{}, p.errorf("expected a column type, got %s", p.cur().Type)
	}
}

// parseDropTable parses: DROP TABLE name .
func (p *Parser) parseDropTable() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // DROP
	if err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return &ast.DropTable{StartPos: pos, Name: name}, nil
}

// parseInsert parses: INSERT INTO name VALUES ( literal (, literal)* ) .
func (p *Parser) parseInsert() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // INSERT
	if err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var values []*ast.Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Insert{StartPos: pos, Table: name, Values: values}, nil
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		if tok.IsFloat {
			return &ast.Literal{Kind: ast.LitFloat, Flt: tok.Float}, nil
		}
		return &ast.Literal{Kind: ast.LitInt, Int: tok.Int}, nil
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: tok.Text}, nil
	case token.NULL:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull}, nil
	case token.MINUS:
		p.advance()
		if !p.curIs(token.NUMBER) {
			return nil, p.errorf("expected a number after unary minus, got %s", p.cur().Type)
		}
		num := p.advance()
		if num.IsFloat {
			return &ast.Literal{Kind: ast.LitFloat, Flt: -num.Float}, nil
		}
		return &ast.Literal{Kind: ast.LitInt, Int: -num.Int}, nil
	default:
		return nil, p.errorf("expected a literal, got %s", tok.Type)
	}
}

// parseUpdate parses:
// UPDATE name SET col = expr (, col = expr)* [WHERE predicate] .
func (p *Parser) parseUpdate() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // UPDATE
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.SET); err != nil {
		return nil, err
	}
	var assignments []*ast.Assignment
	for {
		col, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		expr, err := p.parseUpdateExpr()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, &ast.Assignment{Column: col, Expr: expr})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return &ast.Update{StartPos: pos, Table: name, Assignments: assignments, Where: where}, nil
}

// parseUpdateExpr parses a SET right-hand side: a bare literal/column, or a
// single `operand OP operand` binary arithmetic node. No operator
// precedence or nesting beyond this one level is supported.
func (p *Parser) parseUpdateExpr() (ast.Expr, error) {
	left, err := p.parseUpdateOperand()
	if err != nil {
		return nil, err
	}
	switch p.cur().Type {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH:
		op := p.advance().Type
		right, err := p.parseUpdateOperand()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Left: left, Op: op, Right: right}, nil
	default:
		return left, nil
	}
}

func (p *Parser) parseUpdateOperand() (ast.Expr, error) {
	if p.curIs(token.IDENTIFIER) {
		ref, err := p.parseColRef()
		if err != nil {
			return nil, err
		}
		return ast.ColumnExpr{Ref: ref}, nil
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return ast.LiteralExpr{Lit: *lit}, nil
}

// parseColRef parses a column reference, optionally table-qualified: name
// or name.name.
func (p *Parser) parseColRef() (ast.ColRef, error) {
	first, err := p.parseIdent()
	if err != nil {
		return ast.ColRef{}, err
	}
	if p.curIs(token.DOT) {
		p.advance()
		second, err := p.parseIdent()
		if err != nil {
			return ast.ColRef{}, err
		}
		return ast.ColRef{Table: first, Name: second}, nil
	}
	return ast.ColRef{Name: first}, nil
}

func (p *Parser) parseOptionalWhere() (ast.Predicate, error) {
	if !p.curIs(token.WHERE) {
		return nil, nil
	}
	p.advance()
	return p.parsePredicateOr()
}

// parseDelete parses: DELETE FROM name [WHERE predicate] .
func (p *Parser) parseDelete() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // DELETE
	if err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return &ast.Delete{StartPos: pos, Table: name, Where: where}, nil
}

// --- WHERE predicate grammar: or -> and (OR and)*; and -> primary (AND primary)*
// primary -> '(' or ')' | compare

func (p *Parser) parsePredicateOr() (ast.Predicate, error) {
	left, err := p.parsePredicateAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		p.advance()
		right, err := p.parsePredicateAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePredicateAnd() (ast.Predicate, error) {
	left, err := p.parsePredicatePrimary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		p.advance()
		right, err := p.parsePredicatePrimary()
		if err != nil {
			return nil, err
		}
		left = ast.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePredicatePrimary() (ast.Predicate, error) {
	if p.curIs(token.LPAREN) {
		p.advance()
		inner, err := p.parsePredicateOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseCompare()
}

func (p *Parser) parseCompare() (ast.Predicate, error) {
	left, err := p.parseColRef()
	if err != nil {
		return nil, err
	}
	if !p.cur().Type.IsCompareOp() {
		return nil, p.errorf("expected a comparison operator, got %s", p.cur().Type)
	}
	op := p.advance().Type
	var right ast.Expr
	if op == token.LIKE {
		if !p.curIs(token.STRING) {
			return nil, p.errorf("expected a string pattern after LIKE, got %s", p.cur().Type)
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		right = ast.LiteralExpr{Lit: *lit}
	} else if p.curIs(token.IDENTIFIER) {
		ref, err := p.parseColRef()
		if err != nil {
			return nil, err
		}
		right = ast.ColumnExpr{Ref: ref}
	} else {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		right = ast.LiteralExpr{Lit: *lit}
	}
	return ast.Compare{Left: left, Op: op, Right: right}, nil
}

// parseSelect parses:
// SELECT [DISTINCT] projection (, projection)* FROM table (, table)*
// [WHERE predicate] [GROUP BY col (, col)*] [ORDER BY col [ASC|DESC] (, ...)*]
// [LIMIT n] .
func (p *Parser) parseSelect() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // SELECT
	distinct := false
	if p.curIs(token.DISTINCT) {
		p.advance()
		distinct = true
	}

	var projection []ast.ProjectionItem
	for {
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		projection = append(projection, item)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}

	if err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	var tables []ast.TableRef
	for {
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		tables = append(tables, ref)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}

	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}

	var groupBy []ast.ColRef
	if p.curIs(token.GROUP) {
		p.advance()
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			ref, err := p.parseColRef()
			if err != nil {
				return nil, err
			}
			groupBy = append(groupBy, ref)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	var orderBy []ast.OrderItem
	if p.curIs(token.ORDER) {
		p.advance()
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			ref, err := p.parseColRef()
			if err != nil {
				return nil, err
			}
			dir := ast.Ascending
			switch p.cur().Type {
			case token.ASC:
				p.advance()
			case token.DESC:
				p.advance()
				dir = ast.Descending
			}
			orderBy = append(orderBy, ast.OrderItem{Col: ref, Dir: dir})
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	var limit *int
	if p.curIs(token.LIMIT) {
		p.advance()
		if !p.curIs(token.NUMBER) {
			return nil, p.errorf("expected a number after LIMIT, got %s", p.cur().Type)
		}
		n := int(p.advance().Int)
		limit = &n
	}

	return &ast.Select{
		StartPos:   pos,
		Distinct:   distinct,
		Projection: projection,
		Tables:     tables,
		Where:      where,
		GroupBy:    groupBy,
		OrderBy:    orderBy,
		Limit:      limit,
	}, nil
}

func (p *Parser) parseTableRef() (ast.TableRef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return ast.TableRef{}, err
	}
	alias := name
	if p.curIs(token.AS) {
		p.advance()
		alias, err = p.parseIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
	} else if p.curIs(token.IDENTIFIER) {
		alias, err = p.parseIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
	}
	return ast.TableRef{Name: name, Alias: alias}, nil
}

func (p *Parser) parseProjectionItem() (ast.ProjectionItem, error) {
	if p.curIs(token.ASTERISK) {
		p.advance()
		return ast.StarItem{}, nil
	}
	if p.cur().Type.IsAggregate() {
		fn := p.advance()
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		distinct := false
		if p.curIs(token.DISTINCT) {
			p.advance()
			distinct = true
		}
		argStar := false
		var arg ast.ColRef
		if p.curIs(token.ASTERISK) {
			p.advance()
			argStar = true
		} else {
			ref, err := p.parseColRef()
			if err != nil {
				return nil, err
			}
			arg = ref
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		alias, err := p.parseOptionalAlias()
		if err != nil {
			return nil, err
		}
		return ast.AggregateItem{Fn: fn.Type.String(), ArgStar: argStar, Arg: arg, Distinct: distinct, Alias: alias}, nil
	}
	ref, err := p.parseColRef()
	if err != nil {
		return nil, err
	}
	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	return ast.ColumnItem{Ref: ref, Alias: alias}, nil
}

func (p *Parser) parseOptionalAlias() (string, error) {
	if p.curIs(token.AS) {
		p.advance()
		return p.parseIdent()
	}
	if p.curIs(token.IDENTIFIER) {
		return p.parseIdent()
	}
	return "", nil
}
