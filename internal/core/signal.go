package core

// Signal is the closed set of POSIX signal names the SSH protocol
// defines for the "signal" channel request (RFC 4254 §6.9), with an
// Other fallback for values a client sends that aren't in the closed
// set. Call sites that only care about the wire name can still use
// String(); call sites that want to switch exhaustively can match on
// the named constants.
type Signal struct {
	name string
}

func (s Signal) String() string {
	return s.name
}

// NewSignal wraps an arbitrary signal name reported by the transport.
// Known names normalize to the matching constant below; anything else
// becomes an Other(name) value.
func NewSignal(name string) Signal {
	switch name {
	case SignalABRT.name, SignalALRM.name, SignalFPE.name, SignalHUP.name,
		SignalILL.name, SignalINT.name, SignalKILL.name, SignalPIPE.name,
		SignalQUIT.name, SignalSEGV.name, SignalTERM.name, SignalUSR1.name,
		SignalUSR2.name:
		return Signal{name: name}
	default:
		return Signal{name: name}
	}
}

// Equal reports whether two signals carry the same wire name,
// including two distinct "Other" signals with the same name.
func (s Signal) Equal(other Signal) bool {
	return s.name == other.name
}

var (
	SignalABRT = Signal{name: "ABRT"}
	SignalALRM = Signal{name: "ALRM"}
	SignalFPE  = Signal{name: "FPE"}
	SignalHUP  = Signal{name: "HUP"}
	SignalILL  = Signal{name: "ILL"}
	SignalINT  = Signal{name: "INT"}
	SignalKILL = Signal{name: "KILL"}
	SignalPIPE = Signal{name: "PIPE"}
	SignalQUIT = Signal{name: "QUIT"}
	SignalSEGV = Signal{name: "SEGV"}
	SignalTERM = Signal{name: "TERM"}
	SignalUSR1 = Signal{name: "USR1"}
	SignalUSR2 = Signal{name: "USR2"}
)

// IsKnown reports whether the signal is one of the named constants
// above, as opposed to an extension value a client invented.
func (s Signal) IsKnown() bool {
	switch s.name {
	case SignalABRT.name, SignalALRM.name, SignalFPE.name, SignalHUP.name,
		SignalILL.name, SignalINT.name, SignalKILL.name, SignalPIPE.name,
		SignalQUIT.name, SignalSEGV.name, SignalTERM.name, SignalUSR1.name,
		SignalUSR2.name:
		return true
	default:
		return false
	}
}
