package cla

import "net"

// UDPTransport is a Transport backed by a connected UDP socket,
// grounded on original_source/cla/udp/src/claudp.c's single-peer
// datagram CLA.
type UDPTransport struct {
	conn *net.UDPConn
}

// DialUDP opens a UDP socket bound to localAddr and connected to
// remoteAddr ("host:port" pairs), so Send/Recv need not track a peer
// address themselves.
func DialUDP(localAddr, remoteAddr string) (*UDPTransport, error) {
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, err
	}
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, err
	}
	return &UDPTransport{conn: conn}, nil
}

// maxDatagramSize is the largest UDP payload this transport will read
// in one Recv: 65507 bytes, the most a single IPv4 UDP datagram can
// carry (65535 minus the 8-byte UDP and 20-byte IP headers).
const maxDatagramSize = 65507

func (t *UDPTransport) Send(datagram []byte) error {
	_, err := t.conn.Write(datagram)
	return err
}

func (t *UDPTransport) Recv() ([]byte, error) {
	buf := make([]byte, maxDatagramSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
