package model

// Kind identifies one synchronized BGG domain. Fingerprint keys, sync runs
// and durable tables are all scoped by Kind.
type Kind string

const (
	KindGame      Kind = "game"
	KindAccessory Kind = "accessory"
	KindHotGame   Kind = "hotgame"
	KindHotPerson Kind = "hotperson"
	KindPlay      Kind = "play"
)

// AllKinds lists every kind the scheduler drives.
var AllKinds = []Kind{KindGame, KindAccessory, KindHotGame, KindHotPerson, KindPlay}

// Valid reports whether k names a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindGame, KindAccessory, KindHotGame, KindHotPerson, KindPlay:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
