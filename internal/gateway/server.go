package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one gateway command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts unix-socket clients until context cancellation or listener
// close. Subscribe connections stay open streaming events; every other
// connection is one request/response round trip.
func Serve(ctx context.Context, listener net.Listener, handler Handler, broker *Broker) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept gateway connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			reader := bufio.NewReader(c)
			line, err := reader.ReadBytes('\n')
			if err != nil {
				_ = json.NewEncoder(c).Encode(Response{OK: false, Error: fmt.Sprintf("read request: %v", err)})
				return
			}

			var req Request
			if err := json.Unmarshal(line, &req); err != nil {
				_ = json.NewEncoder(c).Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
				return
			}

			if req.Command == CommandSubscribe {
				serveSubscription(ctx, c, broker)
				return
			}

			resp := handler.Handle(ctx, req)
			_ = json.NewEncoder(c).Encode(resp)
		}(conn)
	}
}

// serveSubscription acknowledges the subscriber and forwards events as JSON
// lines until the daemon stops or the client goes away.
func serveSubscription(ctx context.Context, conn net.Conn, broker *Broker) {
	if broker == nil {
		_ = json.NewEncoder(conn).Encode(Response{OK: false, Error: "event subscriptions unavailable"})
		return
	}

	id, events := broker.Subscribe(0)
	defer broker.Unsubscribe(id)

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(Response{OK: true, Message: "subscribed"}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := encoder.Encode(event); err != nil {
				return
			}
		}
	}
}
