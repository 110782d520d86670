package cpu

// primaryTable is the 256-entry, opcode-indexed dispatch table for the
// unprefixed instruction plane. Regular blocks (register loads, ALU-with-
// register, the INC/DEC/LD-immediate column, and the cc-conditioned control
// transfers) are generated programmatically in init(); irregular opcodes
// get one handler apiece below.
var primaryTable [256]func(*CPU)

// aluOps is the row order shared by the 0x80-0xBF register-ALU block and
// the 0xC6-0xFE immediate-ALU block: ADD,ADC,SUB,SBC,AND,XOR,OR,CP.
var aluOps = [8]func(*CPU, uint8){
	(*CPU).add,
	(*CPU).adc,
	(*CPU).sub,
	(*CPU).sbc,
	(*CPU).and,
	(*CPU).xor,
	(*CPU).or,
	(*CPU).cp,
}

func init() {
	for i := range primaryTable {
		primaryTable[i] = illegalOpcode
	}

	primaryTable[0x00] = opNOP
	primaryTable[0x08] = opLDNNSP
	primaryTable[0x10] = opSTOP
	primaryTable[0x18] = opJR

	primaryTable[0x02] = opLDBCIndA
	primaryTable[0x0A] = opLDABCInd
	primaryTable[0x12] = opLDDEIndA
	primaryTable[0x1A] = opLDADEInd
	primaryTable[0x22] = opLDHLIncA
	primaryTable[0x2A] = opLDAHLInc
	primaryTable[0x32] = opLDHLDecA
	primaryTable[0x3A] = opLDAHLDec

	primaryTable[0x07] = opRLCA
	primaryTable[0x0F] = opRRCA
	primaryTable[0x17] = opRLA
	primaryTable[0x1F] = opRRA
	primaryTable[0x27] = opDAA
	primaryTable[0x2F] = opCPL
	primaryTable[0x37] = opSCF
	primaryTable[0x3F] = opCCF

	primaryTable[0x76] = opHALT

	primaryTable[0xC3] = opJPNN
	primaryTable[0xC9] = opRET
	primaryTable[0xCD] = opCALLNN
	primaryTable[0xD9] = opRETI
	primaryTable[0xE9] = opJPHL

	primaryTable[0xE0] = opLDHnA
	primaryTable[0xF0] = opLDHAn
	primaryTable[0xE2] = opLDHCA
	primaryTable[0xF2] = opLDHAC
	primaryTable[0xEA] = opLDNNA
	primaryTable[0xFA] = opLDANN

	primaryTable[0xE8] = opADDSPr8
	primaryTable[0xF8] = opLDHLSPr8
	primaryTable[0xF9] = opLDSPHL

	primaryTable[0xF3] = opDI
	primaryTable[0xFB] = opEI

	// 16-bit immediate loads, INC rr/DEC rr, ADD HL,rr, PUSH/POP rr: one
	// entry per register pair, step 0x10 apart (BC,DE,HL,SP or BC,DE,HL,AF).
	for rp := uint8(0); rp < 4; rp++ {
		rp := rp
		primaryTable[0x01|(rp<<4)] = func(c *CPU) { c.setRP16(rp, c.fetchImmediate16()) }
		primaryTable[0x03|(rp<<4)] = func(c *CPU) { c.setRP16(rp, c.rp16(rp)+1); c.tick() }
		primaryTable[0x0B|(rp<<4)] = func(c *CPU) { c.setRP16(rp, c.rp16(rp)-1); c.tick() }
		primaryTable[0x09|(rp<<4)] = func(c *CPU) { c.addHL(c.rp16(rp)) }
		primaryTable[0xC5|(rp<<4)] = func(c *CPU) { c.tick(); c.pushStack(c.rp16Stack(rp)) }
		primaryTable[0xC1|(rp<<4)] = func(c *CPU) { c.setRP16Stack(rp, c.popStack()) }
	}

	// 8-bit INC/DEC/LD r,n column: opcode = base | (r<<3), r in target order.
	for r := uint8(0); r < 8; r++ {
		r := r
		primaryTable[0x04|(r<<3)] = func(c *CPU) { c.writeTarget(r, c.inc8(c.readTarget(r))) }
		primaryTable[0x05|(r<<3)] = func(c *CPU) { c.writeTarget(r, c.dec8(c.readTarget(r))) }
		primaryTable[0x06|(r<<3)] = func(c *CPU) { c.writeTarget(r, c.readAndIncPC()) }
	}

	// JR cc,r8 / JP cc,nn / CALL cc,nn / RET cc: cc in {NZ,Z,NC,C}.
	for cc := uint8(0); cc < 4; cc++ {
		cc := cc
		primaryTable[0x20|(cc<<3)] = func(c *CPU) { c.opJRcc(cc) }
		primaryTable[0xC2|(cc<<3)] = func(c *CPU) { c.opJPcc(cc) }
		primaryTable[0xC4|(cc<<3)] = func(c *CPU) { c.opCALLcc(cc) }
		primaryTable[0xC0|(cc<<3)] = func(c *CPU) { c.opRETcc(cc) }
	}

	// RST n: vector n*8 for opcodes 0xC7,0xCF,...,0xFF.
	for n := uint8(0); n < 8; n++ {
		n := n
		primaryTable[0xC7|(n<<3)] = func(c *CPU) {
			c.tick()
			c.pushStack(c.pc)
			c.pc = uint16(n) * 8
		}
	}

	// LD r,r' block, 0x40-0x7F (0x76 overridden to HALT above).
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | (dst << 3) | src
			if opcode == 0x76 {
				continue
			}
			dst, src := dst, src
			primaryTable[opcode] = func(c *CPU) { c.writeTarget(dst, c.readTarget(src)) }
		}
	}

	// Register-ALU block, 0x80-0xBF: row selects the operation, column the
	// right-hand target.
	for row := uint8(0); row < 8; row++ {
		for src := uint8(0); src < 8; src++ {
			row, src := row, src
			primaryTable[0x80|(row<<3)|src] = func(c *CPU) { aluOps[row](c, c.readTarget(src)) }
		}
	}

	// Immediate-ALU block, 0xC6..0xFE in steps of 8, same row order.
	for row := uint8(0); row < 8; row++ {
		row := row
		primaryTable[0xC6|(row<<3)] = func(c *CPU) { aluOps[row](c, c.readAndIncPC()) }
	}
}

func opNOP(c *CPU) {}

// illegalOpcode implements the DMG's undefined opcodes as a defined,
// quiescent halt: the CPU stops advancing rather than mis-executing
// whatever garbage behavior the real silicon happens to exhibit.
func illegalOpcode(c *CPU) {
	c.stopped = true
}

func opSTOP(c *CPU) {
	c.readAndIncPC() // STOP's second byte is fetched and discarded
	c.stop()
}

func opHALT(c *CPU) { c.halt() }
func opDI(c *CPU)   { c.di() }
func opEI(c *CPU)   { c.ei() }

func opRLCA(c *CPU) { c.rlca() }
func opRRCA(c *CPU) { c.rrca() }
func opRLA(c *CPU)  { c.rla() }
func opRRA(c *CPU)  { c.rra() }
func opDAA(c *CPU)  { c.daa() }
func opCPL(c *CPU)  { c.cpl() }
func opSCF(c *CPU)  { c.scf() }
func opCCF(c *CPU)  { c.ccf() }

func opLDBCIndA(c *CPU) { c.writeByte(c.bc(), c.a) }
func opLDABCInd(c *CPU) { c.a = c.readByte(c.bc()) }
func opLDDEIndA(c *CPU) { c.writeByte(c.de(), c.a) }
func opLDADEInd(c *CPU) { c.a = c.readByte(c.de()) }

func opLDHLIncA(c *CPU) {
	c.writeByte(c.hl(), c.a)
	c.setHL(c.hl() + 1)
}
func opLDAHLInc(c *CPU) {
	c.a = c.readByte(c.hl())
	c.setHL(c.hl() + 1)
}
func opLDHLDecA(c *CPU) {
	c.writeByte(c.hl(), c.a)
	c.setHL(c.hl() - 1)
}
func opLDAHLDec(c *CPU) {
	c.a = c.readByte(c.hl())
	c.setHL(c.hl() - 1)
}

// opLDNNSP writes SP little-endian to an absolute address, ticking once per
// byte written, per the two-write timing spec.md calls out explicitly.
func opLDNNSP(c *CPU) {
	address := c.fetchImmediate16()
	c.writeByte(address, uint8(c.sp))
	c.writeByte(address+1, uint8(c.sp>>8))
}

func opLDHnA(c *CPU) {
	offset := c.readAndIncPC()
	c.writeByte(0xFF00+uint16(offset), c.a)
}
func opLDHAn(c *CPU) {
	offset := c.readAndIncPC()
	c.a = c.readByte(0xFF00 + uint16(offset))
}
func opLDHCA(c *CPU) { c.writeByte(0xFF00+uint16(c.c), c.a) }
func opLDHAC(c *CPU) { c.a = c.readByte(0xFF00 + uint16(c.c)) }
func opLDNNA(c *CPU) { c.writeByte(c.fetchImmediate16(), c.a) }
func opLDANN(c *CPU) { c.a = c.readByte(c.fetchImmediate16()) }

func opADDSPr8(c *CPU) {
	result := c.addSPOffset()
	c.tick()
	c.tick()
	c.sp = result
}

func opLDHLSPr8(c *CPU) {
	result := c.addSPOffset()
	c.tick()
	c.setHL(result)
}

func opLDSPHL(c *CPU) {
	c.sp = c.hl()
	c.tick()
}

func opJR(c *CPU) {
	offset := signedByte(c.readAndIncPC())
	c.pc = uint16(int32(c.pc) + int32(offset))
	c.tick()
}

func (c *CPU) opJRcc(cc uint8) {
	offset := signedByte(c.readAndIncPC())
	if !c.condition(cc) {
		return
	}
	c.pc = uint16(int32(c.pc) + int32(offset))
	c.tick()
}

func opJPNN(c *CPU) {
	address := c.fetchImmediate16()
	c.pc = address
	c.tick()
}

func (c *CPU) opJPcc(cc uint8) {
	address := c.fetchImmediate16()
	if !c.condition(cc) {
		return
	}
	c.pc = address
	c.tick()
}

func opJPHL(c *CPU) { c.pc = c.hl() }

func opCALLNN(c *CPU) {
	address := c.fetchImmediate16()
	c.tick()
	c.pushStack(c.pc)
	c.pc = address
}

func (c *CPU) opCALLcc(cc uint8) {
	address := c.fetchImmediate16()
	if !c.condition(cc) {
		return
	}
	c.tick()
	c.pushStack(c.pc)
	c.pc = address
}

func opRET(c *CPU) {
	c.pc = c.popStack()
	c.tick()
}

func (c *CPU) opRETcc(cc uint8) {
	c.tick()
	if !c.condition(cc) {
		return
	}
	c.pc = c.popStack()
	c.tick()
}

func opRETI(c *CPU) { c.reti(); c.tick() }
