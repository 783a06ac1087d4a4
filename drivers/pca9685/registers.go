package pca9685

// Register map (datasheet rev 4, section 7.3).
const (
	regMode1    = 0x00
	regMode2    = 0x01
	regLED0OnL  = 0x06 // each channel spans 4 registers from here
	regAllLEDOn = 0xFA
	regPrescale = 0xFE
)

// MODE1 bits.
const (
	mode1Restart = 0x80
	mode1AI      = 0x20 // register auto-increment
	mode1Sleep   = 0x10
	mode1AllCall = 0x01
)

// MODE2 bits.
const (
	mode2OutDrv = 0x04 // totem-pole outputs
)

const (
	// AddressDefault is the 7-bit address with all address pins low.
	AddressDefault = 0x40

	// oscHz is the internal oscillator; prescale math assumes no EXTCLK.
	oscHz = 25_000_000

	// fullOff is bit 4 of LEDn_OFF_H; forces the channel fully off.
	fullOff = 0x10

	channelCount = 16
	maxTicks     = 4095
)
