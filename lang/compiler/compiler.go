// Package compiler implements the single-pass compiler: source text goes
// in, bytecode comes out, with no intermediate syntax tree. It is grounded
// on the golox reference compiler's Pratt-parser shape (parsePrecedence,
// the parseRule table, emitJump/patchJump/emitLoop backpatching) and on the
// teacher's resolver package for its scope/upvalue bookkeeping, collapsed
// from the teacher's separate parse-then-resolve passes into the single
// pass this language's grammar allows.
package compiler

import (
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
	"github.com/sirupsen/logrus"
)

const maxLocals = 256
const uninitialized = -1

type funcType int

const (
	typeFunction funcType = iota
	typeInitializer
	typeMethod
	typeScript
)

type local struct {
	name     string
	depth    int
	captured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// fnState is the per-function compilation state: the teacher's resolver
// keeps one Scope per lexical block, but a tree-less compiler needs its
// scope bookkeeping alive across the whole function body it's emitting
// code for, so one fnState is pushed per fun/method/script and popped when
// its body closes.
type fnState struct {
	enclosing  *fnState
	fn         *bytecode.Function
	funcType   funcType
	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	// lastWasReturn tracks whether the statement most recently compiled at
	// this function's top level was a return, so endCompiler can skip the
	// implicit trailing "nil; return" when the body already guarantees one.
	lastWasReturn bool
}

func newFnState(enclosing *fnState, typ funcType, name string) *fnState {
	fs := &fnState{enclosing: enclosing, fn: bytecode.NewFunction(name), funcType: typ}
	// Slot 0 is reserved for the receiver (methods/initializers) or the
	// called closure itself (plain functions and the top-level script).
	slotName := ""
	if typ == typeMethod || typ == typeInitializer {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}

type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Parser drives the single-pass compile: it owns the scanner, the current
// and previous tokens, the active function/class compiler chains, and the
// accumulated diagnostics.
type Parser struct {
	sc   *scanner.Scanner
	cur  scanner.Token
	prev scanner.Token

	heap  *heap.Heap
	log   *logrus.Logger
	fn    *fnState
	class *classState

	errs      *multierror.Error
	panicMode bool
}

// Compile compiles src into a top-level Function ready to be wrapped in a
// Closure and run. Every object the compiler itself needs to allocate
// (interned strings, nested function prototypes) goes through h, so that
// objects created mid-compile are already tracked by the collector and
// rooted by the Parser's own MarkRoots.
func Compile(src string, h *heap.Heap, log *logrus.Logger) (*bytecode.Function, error) {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	p := &Parser{sc: scanner.New(src), heap: h, log: log}
	h.AddRoot(p)
	p.fn = newFnState(nil, typeScript, "")

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endCompiler()

	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return fn, nil
}

// MarkRoots implements heap.RootMarker: while compiling, the constant pools
// of every chunk currently under construction (including enclosing
// functions, for a nested fun or method) are reachable but not yet stored
// anywhere the VM's own roots would find them.
func (p *Parser) MarkRoots(h *heap.Heap) {
	for fs := p.fn; fs != nil; fs = fs.enclosing {
		h.Mark(fs.fn)
		for _, c := range fs.fn.Chunk.Constants {
			h.MarkValue(c)
		}
	}
}

// ---- token stream -------------------------------------------------------

func (p *Parser) advance() {
	p.prev = p.cur
	for {
		p.cur = p.sc.Next()
		if p.cur.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.cur.Lexeme)
	}
}

func (p *Parser) check(k token.Token) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Token) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k token.Token, msg string) {
	if p.cur.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// ---- error handling -------------------------------------------------------

func (p *Parser) errorAt(tok scanner.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	ce := &CompileError{Line: tok.Line, Message: msg}
	switch tok.Kind {
	case token.EOF:
		ce.AtEnd = true
	case token.ILLEGAL:
		// the scanner already describes what went wrong; no lexeme to quote
	default:
		ce.Lexeme = tok.Lexeme
	}
	p.errs = multierror.Append(p.errs, ce)
}

func (p *Parser) error(msg string)        { p.errorAt(p.prev, msg) }
func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.cur, msg) }

// sync discards tokens until a likely statement boundary, so one mistake
// doesn't cascade into a wall of spurious diagnostics.
func (p *Parser) sync() {
	p.panicMode = false
	for p.cur.Kind != token.EOF {
		if p.prev.Kind == token.SEMI {
			return
		}
		switch p.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// ---- emitting bytecode ---------------------------------------------------

func (p *Parser) currentChunk() *bytecode.Chunk { return &p.fn.fn.Chunk }

func (p *Parser) emitByte(b byte)      { p.currentChunk().Write(b, p.prev.Line) }
func (p *Parser) emitOp(op bytecode.Op) { p.currentChunk().WriteOp(op, p.prev.Line) }

func (p *Parser) emitBytes(op bytecode.Op, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *Parser) emitReturn() {
	if p.fn.funcType == typeInitializer {
		p.emitBytes(bytecode.OpGetLocal, 0)
	} else {
		p.emitOp(bytecode.OpNil)
	}
	p.emitOp(bytecode.OpReturn)
}

func (p *Parser) makeConstant(v value.Value) byte {
	if len(p.currentChunk().Constants) > 255 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(p.currentChunk().AddConstant(v))
}

func (p *Parser) emitConstant(v value.Value) {
	p.emitBytes(bytecode.OpConstant, p.makeConstant(v))
}

func (p *Parser) emitJump(op bytecode.Op) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentChunk().Len() - 2
}

func (p *Parser) patchJump(offset int) {
	code := p.currentChunk().Code
	jump := len(code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
		return
	}
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(bytecode.OpLoop)
	offset := p.currentChunk().Len() - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
		return
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}

// endCompiler closes out the current function, returning it and restoring
// the enclosing fnState (nil at the top-level script).
func (p *Parser) endCompiler() *bytecode.Function {
	if !p.fn.lastWasReturn {
		p.emitReturn()
	}
	fn := p.fn.fn
	p.log.Debug(fn.Chunk.Disassemble(fn.String()))
	p.heap.Track(fn, int64(len(fn.Chunk.Code))+64)
	p.fn = p.fn.enclosing
	return fn
}

func (p *Parser) beginScope() { p.fn.scopeDepth++ }

func (p *Parser) endScope() {
	p.fn.scopeDepth--
	locals := p.fn.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > p.fn.scopeDepth {
		if locals[len(locals)-1].captured {
			p.emitOp(bytecode.OpCloseUpvalue)
		} else {
			p.emitOp(bytecode.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	p.fn.locals = locals
}

// ---- declarations and statements -----------------------------------------

func (p *Parser) declaration() {
	p.fn.lastWasReturn = false
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.sync()
	}
}

func (p *Parser) classDeclaration() {
	p.consume(token.IDENT, "Expect class name.")
	className := p.prev
	nameConstant := p.identifierConstant(className)
	p.declareVariable()
	p.emitBytes(bytecode.OpClass, nameConstant)
	p.defineVariable(nameConstant)

	cls := &classState{enclosing: p.class}
	p.class = cls

	if p.match(token.LT) {
		p.consume(token.IDENT, "Expect superclass name.")
		if className.Lexeme == p.prev.Lexeme {
			p.error("A class can't inherit from itself.")
		}
		p.variable(false)

		p.beginScope()
		p.addLocal(scanner.Token{Kind: token.IDENT, Lexeme: "super", Line: p.prev.Line})
		p.markInitialized()

		p.namedVariable(className, false)
		p.emitOp(bytecode.OpInherit)
		cls.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")
	p.emitOp(bytecode.OpPop)

	if cls.hasSuperclass {
		p.endScope()
	}
	p.class = cls.enclosing
}

func (p *Parser) method() {
	p.consume(token.IDENT, "Expect method name.")
	name := p.prev
	constant := p.identifierConstant(name)

	typ := typeMethod
	if name.Lexeme == "init" {
		typ = typeInitializer
	}
	p.function(typ, name.Lexeme)
	p.emitBytes(bytecode.OpMethod, constant)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction, p.prev.Lexeme)
	p.defineVariable(global)
}

func (p *Parser) function(typ funcType, name string) {
	fs := newFnState(p.fn, typ, name)
	p.fn = fs
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			fs.fn.Arity++
			if fs.fn.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramConst)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	fn := p.endCompiler()
	fn.UpvalueCount = len(fs.upvalues)

	idx := p.makeConstant(value.Object(fn))
	p.emitBytes(bytecode.OpClosure, idx)
	for _, uv := range fs.upvalues {
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(uv.index)
	}
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(bytecode.OpNil)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.RETURN):
		p.returnStatement()
		return
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
	// A return nested inside an if, loop or block does not return on every
	// path, so only a return that is itself this statement counts.
	p.fn.lastWasReturn = false
}

func (p *Parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(bytecode.OpPrint)
}

func (p *Parser) returnStatement() {
	if p.fn.funcType == typeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.SEMI) {
		p.emitReturn()
		p.fn.lastWasReturn = true
		return
	}
	if p.fn.funcType == typeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(bytecode.OpReturn)
	p.fn.lastWasReturn = true
}

func (p *Parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()

	elseJump := p.emitJump(bytecode.OpJump)
	p.patchJump(thenJump)
	p.emitOp(bytecode.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := p.currentChunk().Len()
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(bytecode.OpPop)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case p.match(token.SEMI):
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.currentChunk().Len()
	exitJump := -1
	if !p.match(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.emitJump(bytecode.OpJumpIfFalse)
		p.emitOp(bytecode.OpPop)
	}

	if !p.check(token.RPAREN) {
		bodyJump := p.emitJump(bytecode.OpJump)
		incrStart := p.currentChunk().Len()
		p.expression()
		p.emitOp(bytecode.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	} else {
		p.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(bytecode.OpPop)
	}
	p.endScope()
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(bytecode.OpPop)
}

// ---- variables ------------------------------------------------------------

func (p *Parser) parseVariable(msg string) byte {
	p.consume(token.IDENT, msg)
	p.declareVariable()
	if p.fn.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.prev)
}

func (p *Parser) identifierConstant(tok scanner.Token) byte {
	return p.makeConstant(value.Object(p.heap.NewString(tok.Lexeme)))
}

func (p *Parser) declareVariable() {
	if p.fn.scopeDepth == 0 {
		return
	}
	name := p.prev
	for i := len(p.fn.locals) - 1; i >= 0; i-- {
		l := p.fn.locals[i]
		if l.depth != uninitialized && l.depth < p.fn.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Parser) addLocal(name scanner.Token) {
	if len(p.fn.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.fn.locals = append(p.fn.locals, local{name: name.Lexeme, depth: uninitialized})
}

func (p *Parser) markInitialized() {
	if p.fn.scopeDepth == 0 {
		return
	}
	p.fn.locals[len(p.fn.locals)-1].depth = p.fn.scopeDepth
}

func (p *Parser) defineVariable(global byte) {
	if p.fn.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(bytecode.OpDefineGlobal, global)
}

func resolveLocal(p *Parser, fs *fnState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == uninitialized {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func resolveUpvalue(p *Parser, fs *fnState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(p, fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].captured = true
		return addUpvalue(fs, byte(local), true)
	}
	if up := resolveUpvalue(p, fs.enclosing, name); up != -1 {
		return addUpvalue(fs, byte(up), false)
	}
	return -1
}

func addUpvalue(fs *fnState, index byte, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

func (p *Parser) namedVariable(name scanner.Token, canAssign bool) {
	var getOp, setOp bytecode.Op
	arg := resolveLocal(p, p.fn, name.Lexeme)
	if arg != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else if arg = resolveUpvalue(p, p.fn, name.Lexeme); arg != -1 {
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitBytes(setOp, byte(arg))
	} else {
		p.emitBytes(getOp, byte(arg))
	}
}

// ---- expressions ------------------------------------------------------------

func (p *Parser) expression() { p.parsePrecedence(precAssign) }

func (p *Parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := ruleFor(p.prev.Kind).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssign
	prefix(p, canAssign)

	for prec <= ruleFor(p.cur.Kind).prec {
		p.advance()
		infix := ruleFor(p.prev.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func (p *Parser) number(_ bool) {
	n, err := strconv.ParseFloat(p.prev.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(n))
}

func (p *Parser) string(_ bool) {
	raw := p.prev.Lexeme
	unquoted := raw[1 : len(raw)-1]
	p.emitConstant(value.Object(p.heap.NewString(unquoted)))
}

func (p *Parser) literal(_ bool) {
	switch p.prev.Kind {
	case token.FALSE:
		p.emitOp(bytecode.OpFalse)
	case token.NIL:
		p.emitOp(bytecode.OpNil)
	case token.TRUE:
		p.emitOp(bytecode.OpTrue)
	}
}

func (p *Parser) variable(canAssign bool) { p.namedVariable(p.prev, canAssign) }

func (p *Parser) this(_ bool) {
	if p.class == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.namedVariable(p.prev, false)
}

func (p *Parser) super(_ bool) {
	switch {
	case p.class == nil:
		p.error("Can't use 'super' outside of a class.")
	case !p.class.hasSuperclass:
		p.error("Can't use 'super' in a class with no superclass.")
	}

	superTok := p.prev
	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENT, "Expect superclass method name.")
	name := p.identifierConstant(p.prev)

	p.namedVariable(scanner.Token{Kind: token.IDENT, Lexeme: "this", Line: superTok.Line}, false)
	if p.match(token.LPAREN) {
		argCount := p.argumentList()
		p.namedVariable(scanner.Token{Kind: token.IDENT, Lexeme: "super", Line: superTok.Line}, false)
		p.emitOp(bytecode.OpSuperInvoke)
		p.emitByte(name)
		p.emitByte(byte(argCount))
	} else {
		p.namedVariable(scanner.Token{Kind: token.IDENT, Lexeme: "super", Line: superTok.Line}, false)
		p.emitBytes(bytecode.OpGetSuper, name)
	}
}

func (p *Parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func (p *Parser) unary(_ bool) {
	op := p.prev.Kind
	p.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		p.emitOp(bytecode.OpNot)
	case token.MINUS:
		p.emitOp(bytecode.OpNegate)
	}
}

func (p *Parser) binary(_ bool) {
	op := p.prev.Kind
	rule := ruleFor(op)
	p.parsePrecedence(rule.prec + 1)

	switch op {
	case token.BANGEQ:
		p.emitOp(bytecode.OpEqual)
		p.emitOp(bytecode.OpNot)
	case token.EQEQ:
		p.emitOp(bytecode.OpEqual)
	case token.GT:
		p.emitOp(bytecode.OpGreater)
	case token.GE:
		p.emitOp(bytecode.OpLess)
		p.emitOp(bytecode.OpNot)
	case token.LT:
		p.emitOp(bytecode.OpLess)
	case token.LE:
		p.emitOp(bytecode.OpGreater)
		p.emitOp(bytecode.OpNot)
	case token.PLUS:
		p.emitOp(bytecode.OpAdd)
	case token.MINUS:
		p.emitOp(bytecode.OpSubtract)
	case token.STAR:
		p.emitOp(bytecode.OpMultiply)
	case token.SLASH:
		p.emitOp(bytecode.OpDivide)
	}
}

func (p *Parser) and(_ bool) {
	endJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *Parser) or(_ bool) {
	elseJump := p.emitJump(bytecode.OpJumpIfFalse)
	endJump := p.emitJump(bytecode.OpJump)
	p.patchJump(elseJump)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *Parser) call(_ bool) {
	argCount := p.argumentList()
	p.emitBytes(bytecode.OpCall, byte(argCount))
}

func (p *Parser) dot(canAssign bool) {
	p.consume(token.IDENT, "Expect property name after '.'.")
	name := p.identifierConstant(p.prev)

	switch {
	case canAssign && p.match(token.EQ):
		p.expression()
		p.emitBytes(bytecode.OpSetProperty, name)
	case p.match(token.LPAREN):
		argCount := p.argumentList()
		p.emitOp(bytecode.OpInvoke)
		p.emitByte(name)
		p.emitByte(byte(argCount))
	default:
		p.emitBytes(bytecode.OpGetProperty, name)
	}
}

func (p *Parser) argumentList() int {
	argCount := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}
