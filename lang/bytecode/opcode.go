package bytecode

// Op is a single bytecode instruction opcode. Every instruction is one byte
// of opcode followed by a fixed number of operand bytes determined by the
// opcode alone, unlike the teacher's variable-width, section-addressed
// encoding — this language has no defer/catch blocks or load sections to
// justify that generality.
type Op uint8

// "x y OP z" is a stack picture: the state of the operand stack before and
// after the instruction runs, read left to right from the stack bottom.
const ( //nolint:revive
	// Constants and literals.
	OpConstant Op = iota // - OpConstant<u8> c
	OpNil                // - OpNil nil
	OpTrue               // - OpTrue true
	OpFalse              // - OpFalse false

	// Stack bookkeeping.
	OpPop // x OpPop -

	// Variables.
	OpGetLocal    // - OpGetLocal<u8> x
	OpSetLocal    // x OpSetLocal<u8> x
	OpGetGlobal   // - OpGetGlobal<u8> x
	OpDefineGlobal // x OpDefineGlobal<u8> -
	OpSetGlobal   // x OpSetGlobal<u8> x
	OpGetUpvalue  // - OpGetUpvalue<u8> x
	OpSetUpvalue  // x OpSetUpvalue<u8> x

	// Object properties.
	OpGetProperty // inst OpGetProperty<u8> x
	OpSetProperty // inst x OpSetProperty<u8> x
	OpGetSuper    // inst super OpGetSuper<u8> method

	// Comparisons and arithmetic.
	OpEqual   // a b OpEqual bool
	OpGreater // a b OpGreater bool
	OpLess    // a b OpLess bool
	OpAdd     // a b OpAdd (a+b)
	OpSubtract
	OpMultiply
	OpDivide
	OpNot    // x OpNot !x
	OpNegate // x OpNegate -x

	// Statements.
	OpPrint // x OpPrint -

	// Control flow. Jump operands are u16 offsets, big-endian.
	OpJump        // - OpJump<u16> -
	OpJumpIfFalse // x OpJumpIfFalse<u16> x
	OpLoop        // - OpLoop<u16> -

	// Calls.
	OpCall        // fn arg1..argN OpCall<u8=argc> result
	OpInvoke      // inst arg1..argN OpInvoke<u8=nameIdx><u8=argc> result
	OpSuperInvoke // inst arg1..argN super OpSuperInvoke<u8=nameIdx><u8=argc> result

	// Closures and upvalues.
	OpClosure      // - OpClosure<u8=fnConst><upvalue descriptors...> closure
	OpCloseUpvalue // x OpCloseUpvalue -

	OpReturn // x OpReturn -

	// Classes.
	OpClass   // - OpClass<u8=nameConst> class
	OpInherit // super sub OpInherit super
	OpMethod  // class fn OpMethod<u8=nameConst> class
)

// operandWidths gives the number of operand bytes that follow each opcode.
// OpClosure is variable-width (one upvalue descriptor pair per captured
// variable) and is handled specially by Chunk.Disassemble and the VM.
var operandWidths = [...]int{
	OpConstant:      1,
	OpNil:           0,
	OpTrue:          0,
	OpFalse:         0,
	OpPop:           0,
	OpGetLocal:      1,
	OpSetLocal:      1,
	OpGetGlobal:     1,
	OpDefineGlobal:  1,
	OpSetGlobal:     1,
	OpGetUpvalue:    1,
	OpSetUpvalue:    1,
	OpGetProperty:   1,
	OpSetProperty:   1,
	OpGetSuper:      1,
	OpEqual:         0,
	OpGreater:       0,
	OpLess:          0,
	OpAdd:           0,
	OpSubtract:      0,
	OpMultiply:      0,
	OpDivide:        0,
	OpNot:           0,
	OpNegate:        0,
	OpPrint:         0,
	OpJump:          2,
	OpJumpIfFalse:   2,
	OpLoop:          2,
	OpCall:          1,
	OpInvoke:        2,
	OpSuperInvoke:   2,
	OpClosure:       1, // plus 2 bytes per upvalue, decoded separately
	OpCloseUpvalue:  0,
	OpReturn:        0,
	OpClass:         1,
	OpInherit:       0,
	OpMethod:        1,
}

var opNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "OP_UNKNOWN"
}

// OperandWidth returns the number of fixed operand bytes following op. For
// OpClosure this is only the function-constant index; the upvalue
// descriptors that follow have a length determined by the function itself.
func (op Op) OperandWidth() int {
	if int(op) < len(operandWidths) {
		return operandWidths[op]
	}
	return 0
}
