package tigertail

import (
	"fmt"

	"github.com/google/gousb"
)

// usbEndpoint bundles the gousb handles that must be released together.
type usbEndpoint struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	done func()
	out  *gousb.OutEndpoint
}

func (u *usbEndpoint) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

func (u *usbEndpoint) Close() error {
	u.done()
	err := u.dev.Close()
	if cerr := u.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}

func openEndpoint(serialNumber string) (commandWriter, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
	})
	if err != nil {
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
		return nil, err
	}

	var dev *gousb.Device
	for _, d := range devs {
		if dev != nil {
			d.Close()
			continue
		}
		if serialNumber != "" {
			sn, serr := d.SerialNumber()
			if serr != nil || sn != serialNumber {
				d.Close()
				continue
			}
		}
		dev = d
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("no tigertail with serial %q", serialNumber)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	out, err := intf.OutEndpoint(1)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return &usbEndpoint{ctx: ctx, dev: dev, done: done, out: out}, nil
}
