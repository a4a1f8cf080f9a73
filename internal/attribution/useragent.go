package attribution

import (
	"strings"

	"github.com/mileusna/useragent"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Device классификация user-agent. Пустые поля означают, что парсер
// не смог определить значение.
type Device struct {
	Type           string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Vendor         string
}

// Classify разбирает строку user-agent. Тип устройства по умолчанию desktop.
func Classify(userAgent string) Device {
	device := Device{Type: DeviceDesktop}
	if strings.TrimSpace(userAgent) == "" {
		return device
	}

	ua := useragent.Parse(userAgent)

	switch {
	case ua.Tablet:
		device.Type = DeviceTablet
	case ua.Mobile:
		device.Type = DeviceMobile
	}

	device.Browser = ua.Name
	device.BrowserVersion = ua.Version
	device.OS = ua.OS
	device.OSVersion = ua.OSVersion
	device.Vendor = ua.Device

	return device
}
