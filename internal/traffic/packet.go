package traffic

// Packet is one application datagram in flight. Src and Dst are node ids;
// SentAt is virtual seconds at transmission.
type Packet struct {
	Src      int
	Dst      int
	SourceIP string
	Port     uint16
	Size     int
	SentAt   float64

	tag    Category
	tagged bool
}
