package pca9685

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.i2c.Tx(d.addr, d.w[:2], nil)
}

// writeChannel writes the ON and OFF tick pair for one channel in a single
// auto-increment transaction.
func (d *Device) writeChannel(base byte, on, off uint16) error {
	d.w[0] = base
	d.w[1] = byte(on)
	d.w[2] = byte(on >> 8)
	d.w[3] = byte(off)
	d.w[4] = byte(off >> 8)
	return d.i2c.Tx(d.addr, d.w[:5], nil)
}
