package transport

// Vendor identifies the device family a descriptor belongs to. The core treats
// all vendors identically; only the adapter implementation differs.
type Vendor string

const (
	VendorLedger   Vendor = "ledger"
	VendorTrezor   Vendor = "trezor"
	VendorGridPlus Vendor = "gridplus"
	VendorOther    Vendor = "other"
)

// Method is the physical connection method a device was observed on.
type Method string

const (
	MethodUSB       Method = "usb"
	MethodBluetooth Method = "bluetooth"
	MethodWifi      Method = "wifi"
	MethodOther     Method = "other"
)

// DeviceDescriptor is the transport-reported identity and metadata for a
// hardware signing device. The ID is stable across sessions (derived from the
// hardware serial or transport address by the adapter).
type DeviceDescriptor struct {
	ID              string
	Vendor          Vendor
	Model           string
	FirmwareVersion string
	Method          Method
	Apps            []string
}

// PathRange is a bounded page of derivation indices, [Start, Start+Count).
type PathRange struct {
	Start int
	Count int
}

// AccountDescriptor is a single derived account as reported by the device.
type AccountDescriptor struct {
	Address        string
	Index          int
	DerivationPath string
}
