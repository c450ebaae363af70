package network

import (
	"errors"
	"net"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/core/util/async"
)

const acceptBackoff = 50 * time.Millisecond

type Tcp struct {
	addr string
}

func NewTcpServer(addr string) Tcp {
	return Tcp{addr: addr}
}

func (t Tcp) Serve() error {
	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		log.Error(err)
		return err
	}
	return t.ServeListener(listener)
}

// ServeListener accepts players on listener until it is closed.
func (t Tcp) ServeListener(listener net.Listener) error {
	log.Infof("Tcp server listening on %s\n", listener.Addr())
	for {
		conn, err := listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			log.Infof("Tcp server on %s stopped\n", listener.Addr())
			return err
		}
		if err != nil {
			log.Infof("listener.Accept err %v\n", err)
			time.Sleep(acceptBackoff)
			continue
		}
		async.Async(func() {
			if err := handle(protocol.NewTcpReadWriteCloser(conn)); err != nil {
				log.Error(err)
			}
		})
	}
}
