package cpu

import "github.com/corvidae/dmgboy/dmgboy/bit"

// cbTable is indexed by bits 7:3 of the byte following a 0xCB prefix (32
// rows of 8, one per target register); the target itself (bits 2:0) is
// passed through to the handler.
var cbTable [32]func(*CPU, uint8)

func init() {
	for row := uint8(0); row < 8; row++ {
		switch row {
		case 0:
			cbTable[row] = (*CPU).cbRLC
		case 1:
			cbTable[row] = (*CPU).cbRRC
		case 2:
			cbTable[row] = (*CPU).cbRL
		case 3:
			cbTable[row] = (*CPU).cbRR
		case 4:
			cbTable[row] = (*CPU).cbSLA
		case 5:
			cbTable[row] = (*CPU).cbSRA
		case 6:
			cbTable[row] = (*CPU).cbSwap
		case 7:
			cbTable[row] = (*CPU).cbSRL
		}
	}

	for b := uint8(0); b < 8; b++ {
		bitIdx := b
		cbTable[8+b] = func(c *CPU, target uint8) { c.cbBit(bitIdx, target) }
		cbTable[16+b] = func(c *CPU, target uint8) { c.cbRes(bitIdx, target) }
		cbTable[24+b] = func(c *CPU, target uint8) { c.cbSet(bitIdx, target) }
	}
}

func (c *CPU) cbRLC(target uint8) {
	v := c.readTarget(target)
	carry := (v >> 7) & 1
	result := (v << 1) | carry
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry == 1)
}

func (c *CPU) cbRRC(target uint8) {
	v := c.readTarget(target)
	carry := v & 1
	result := (v >> 1) | (carry << 7)
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry == 1)
}

func (c *CPU) cbRL(target uint8) {
	v := c.readTarget(target)
	oldCarry := carryIn(c.flag(FlagC))
	newCarry := (v >> 7) & 1
	result := (v << 1) | oldCarry
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, newCarry == 1)
}

func (c *CPU) cbRR(target uint8) {
	v := c.readTarget(target)
	oldCarry := carryIn(c.flag(FlagC))
	newCarry := v & 1
	result := (v >> 1) | (oldCarry << 7)
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, newCarry == 1)
}

func (c *CPU) cbSLA(target uint8) {
	v := c.readTarget(target)
	carry := (v >> 7) & 1
	result := v << 1
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry == 1)
}

func (c *CPU) cbSRA(target uint8) {
	v := c.readTarget(target)
	carry := v & 1
	result := (v >> 1) | (v & 0x80)
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry == 1)
}

func (c *CPU) cbSwap(target uint8) {
	v := c.readTarget(target)
	result := (v << 4) | (v >> 4)
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, false)
}

func (c *CPU) cbSRL(target uint8) {
	v := c.readTarget(target)
	carry := v & 1
	result := v >> 1
	c.writeTarget(target, result)
	c.setFlag(FlagZ, setZero(result))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry == 1)
}

func (c *CPU) cbBit(bitIdx, target uint8) {
	v := c.readTarget(target)
	c.setFlag(FlagZ, !bit.IsSet(bitIdx, v))
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, true)
}

func (c *CPU) cbRes(bitIdx, target uint8) {
	v := c.readTarget(target)
	c.writeTarget(target, bit.Reset(bitIdx, v))
}

func (c *CPU) cbSet(bitIdx, target uint8) {
	v := c.readTarget(target)
	c.writeTarget(target, bit.Set(bitIdx, v))
}
