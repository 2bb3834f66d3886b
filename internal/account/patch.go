package account

// Patch is a partial record. A nil field is absent.
//
// The same type serves as the selector for edit, delete, clear and list,
// and as the set of fields merged onto the matched record by edit.
type Patch struct {
	User           *string
	Port           *int
	Passwd         *string
	Method         *string
	Protocol       *string
	Obfs           *string
	TransferEnable *int64
	U              *int64
	D              *int64
	Enable         *bool
	ForbiddenPort  *string
}

// IsEmpty reports whether no field is present.
func (p Patch) IsEmpty() bool {
	return p.User == nil && p.Port == nil && p.Passwd == nil &&
		p.Method == nil && p.Protocol == nil && p.Obfs == nil &&
		p.TransferEnable == nil && p.U == nil && p.D == nil &&
		p.Enable == nil && p.ForbiddenPort == nil
}

// HasKey reports whether user or port is present.
func (p Patch) HasKey() bool {
	return p.User != nil || p.Port != nil
}

// Matches reports whether r agrees with every present key field of p.
// Only user and port take part; an empty selector matches every record.
func (p Patch) Matches(r Record) bool {
	if p.User != nil && r.User != *p.User {
		return false
	}
	if p.Port != nil && r.Port != *p.Port {
		return false
	}
	return true
}

// Collides reports whether r shares the user or the port of p. This is the
// duplicate check used by add and is deliberately looser than Matches.
func (p Patch) Collides(r Record) bool {
	if p.User != nil && r.User == *p.User {
		return true
	}
	if p.Port != nil && r.Port == *p.Port {
		return true
	}
	return false
}

// Apply overwrites the fields of r that are present in p. Each assigned
// field is written to the file in canonical form even if r lacked the key.
func (p Patch) Apply(r *Record) {
	if p.User != nil {
		r.User = *p.User
		r.set(KeyUser)
	}
	if p.Port != nil {
		r.Port = *p.Port
		r.set(KeyPort)
	}
	if p.Passwd != nil {
		r.Passwd = *p.Passwd
		r.set(KeyPasswd)
	}
	if p.Method != nil {
		r.Method = *p.Method
		r.set(KeyMethod)
	}
	if p.Protocol != nil {
		r.Protocol = *p.Protocol
		r.set(KeyProtocol)
	}
	if p.Obfs != nil {
		r.Obfs = *p.Obfs
		r.set(KeyObfs)
	}
	if p.TransferEnable != nil {
		r.TransferEnable = *p.TransferEnable
		r.set(KeyTransferEnable)
	}
	if p.U != nil {
		r.U = *p.U
		r.set(KeyU)
	}
	if p.D != nil {
		r.D = *p.D
		r.set(KeyD)
	}
	if p.Enable != nil {
		r.Enable = *p.Enable
		r.set(KeyEnable)
	}
	if p.ForbiddenPort != nil {
		r.ForbiddenPort = *p.ForbiddenPort
		r.set(KeyForbiddenPort)
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
