// Package transport reads voice datagrams from a UDP socket.
//
// The Ingress loop applies a short read deadline to every read so that a
// cancelled context is noticed within one poll interval, even when no
// traffic arrives:
//
//	conn, _ := transport.ListenUDP(":0")
//	ingress := transport.NewIngress(conn, handle, transport.IngressConfig{})
//	go ingress.Run(ctx)
//
// The handler runs on the ingress goroutine and must not retain the
// buffer it is given.
package transport
