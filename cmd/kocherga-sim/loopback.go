package main

// loopbackPort is a serial.Port backed by a plain byte queue: bytes sent
// on one end of a pair are received on the other. It stands in for the
// physical UART the real ISerialPort wraps.
type loopbackPort struct {
	rx *[]byte // bytes available to Receive
	tx *[]byte // bytes appended by Send, drained by the peer's rx
}

// newLoopbackPair returns two ends of one logical wire: bytes sent on a
// arrive at b's Receive, and vice versa.
func newLoopbackPair() (a, b *loopbackPort) {
	buf1 := make([]byte, 0, 4096)
	buf2 := make([]byte, 0, 4096)
	a = &loopbackPort{rx: &buf2, tx: &buf1}
	b = &loopbackPort{rx: &buf1, tx: &buf2}
	return a, b
}

func (p *loopbackPort) Receive() (byte, bool) {
	if len(*p.rx) == 0 {
		return 0, false
	}
	b := (*p.rx)[0]
	*p.rx = (*p.rx)[1:]
	return b, true
}

func (p *loopbackPort) Send(b byte) bool {
	*p.tx = append(*p.tx, b)
	return true
}
