package compiler

import "github.com/mna/ember/lang/token"

// precedence orders binding strength from loosest to tightest, following
// the golox reference compiler's Prec ladder (itself Crafting Interpreters'
// canonical table), used by parsePrecedence to decide how far an infix
// parse should keep consuming.
type precedence int

const (
	precNone   precedence = iota
	precAssign            // =
	precOr                // or
	precAnd               // and
	precEqual             // == !=
	precCompare           // < > <= >=
	precTerm              // + -
	precFactor            // * /
	precUnary             // ! -
	precCall              // . ()
	precPrimary
)

// parseFn is a Pratt-parsing prefix or infix handler. canAssign tells a
// prefix handler for an assignable expression (a bare identifier, a
// property access) whether a trailing '=' should be treated as an
// assignment, matching the golox reference's technique for rejecting
// "a + b = c" without a separate assignment-target pass.
type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

var rules = map[token.Token]parseRule{
	token.LPAREN: {prefix: (*Parser).grouping, infix: (*Parser).call, prec: precCall},
	token.DOT:    {infix: (*Parser).dot, prec: precCall},
	token.MINUS:  {prefix: (*Parser).unary, infix: (*Parser).binary, prec: precTerm},
	token.PLUS:   {infix: (*Parser).binary, prec: precTerm},
	token.SLASH:  {infix: (*Parser).binary, prec: precFactor},
	token.STAR:   {infix: (*Parser).binary, prec: precFactor},
	token.BANG:   {prefix: (*Parser).unary},
	token.BANGEQ: {infix: (*Parser).binary, prec: precEqual},
	token.EQEQ:   {infix: (*Parser).binary, prec: precEqual},
	token.GT:     {infix: (*Parser).binary, prec: precCompare},
	token.GE:     {infix: (*Parser).binary, prec: precCompare},
	token.LT:     {infix: (*Parser).binary, prec: precCompare},
	token.LE:     {infix: (*Parser).binary, prec: precCompare},
	token.IDENT:  {prefix: (*Parser).variable},
	token.STRING: {prefix: (*Parser).string},
	token.NUMBER: {prefix: (*Parser).number},
	token.AND:    {infix: (*Parser).and, prec: precAnd},
	token.OR:     {infix: (*Parser).or, prec: precOr},
	token.FALSE:  {prefix: (*Parser).literal},
	token.NIL:    {prefix: (*Parser).literal},
	token.TRUE:   {prefix: (*Parser).literal},
	token.THIS:   {prefix: (*Parser).this},
	token.SUPER:  {prefix: (*Parser).super},
}

func ruleFor(tok token.Token) parseRule { return rules[tok] }
