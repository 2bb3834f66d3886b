package account

// Built-in values for fields the caller does not supply on add.
const (
	DefaultMethod         = "aes-128-cfb"
	DefaultProtocol       = "auth_sha1_v2_compatible"
	DefaultObfs           = "tls1.2_ticket_auth_compatible"
	DefaultTransferEnable = int64(1125899906842624) // 1 PiB

	// GiB is the unit of the transfer quota on the command line.
	GiB = int64(1024 * 1024 * 1024)
)

// Defaults holds the values a new record starts from.
type Defaults struct {
	Method         string
	Protocol       string
	Obfs           string
	TransferEnable int64
}

// BuiltinDefaults returns the defaults used when nothing is configured.
func BuiltinDefaults() Defaults {
	return Defaults{
		Method:         DefaultMethod,
		Protocol:       DefaultProtocol,
		Obfs:           DefaultObfs,
		TransferEnable: DefaultTransferEnable,
	}
}

// withFallback fills empty fields of d from the built-in defaults.
func (d Defaults) withFallback() Defaults {
	b := BuiltinDefaults()
	if d.Method == "" {
		d.Method = b.Method
	}
	if d.Protocol == "" {
		d.Protocol = b.Protocol
	}
	if d.Obfs == "" {
		d.Obfs = b.Obfs
	}
	if d.TransferEnable <= 0 {
		d.TransferEnable = b.TransferEnable
	}
	return d
}

// NewRecord returns an enabled record with zeroed counters.
func (d Defaults) NewRecord(passwd string) Record {
	return Record{
		Enable:         true,
		Method:         d.Method,
		Protocol:       d.Protocol,
		Obfs:           d.Obfs,
		TransferEnable: d.TransferEnable,
		Passwd:         passwd,
	}
}
