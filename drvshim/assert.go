package drvshim

import "tinygo.org/x/drivers"

var (
	_ drivers.I2C = (*I2C)(nil)
	_ drivers.SPI = (*SPI)(nil)
)
