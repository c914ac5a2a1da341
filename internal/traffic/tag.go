package traffic

// Category is the 1-byte traffic classification carried on every generated
// packet. It travels with the packet end to end; receive-side logging reads
// it instead of querying the sender.
type Category uint8

const (
	Normal Category = iota
	Malicious
	Interfering
)

func (c Category) String() string {
	switch c {
	case Malicious:
		return "Malicious"
	case Interfering:
		return "Interfering"
	}
	return "Normal"
}

// Attach marks an outbound packet with its category before transmission.
func Attach(p *Packet, c Category) {
	p.tag = c
	p.tagged = true
}

// ReadCategory returns the packet's category, defaulting to Normal when no
// tag is present. It never fails.
func ReadCategory(p *Packet) Category {
	if p == nil || !p.tagged {
		return Normal
	}
	return p.tag
}
