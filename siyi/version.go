package siyi

import (
	"fmt"

	version "github.com/hashicorp/go-version"
)

// SemanticVersion renders the gimbal firmware version in dotted
// form. On the wire the version travels least significant byte
// first, so the patch component comes first.
func (m *FirmwareMessage) SemanticVersion() string {
	v := m.GimbalVersion
	return fmt.Sprintf("%d.%d.%d", v[2], v[1], v[0])
}

// HasMinimumFirmware reports whether the gimbal firmware is at
// least min, given in "major.minor.patch" form. It returns an
// error until the first firmware response has arrived.
func (g *Gimbal) HasMinimumFirmware(min string) (bool, error) {
	fw := g.state.Firmware()
	if fw.GimbalVersion == ([4]byte{}) {
		return false, ErrNotConnected
	}
	minVer, err := version.NewVersion(min)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %q: %v", min, err)
	}
	fwVer, err := version.NewVersion(fw.SemanticVersion())
	if err != nil {
		return false, err
	}
	return !fwVer.LessThan(minVer), nil
}
