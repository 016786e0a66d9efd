package semnet

import (
	"bufio"
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	clog "github.com/vilterp/semnet/pkg/log"
)

type connectionID int

type connection struct {
	clientConn *websocket.Conn
	id         connectionID
	server     *Server
	responses  chan *Response
	context    context.Context
}

func newConnection(wsConn *websocket.Conn, s *Server, ID int) *connection {
	ctx := context.WithValue(s.ctx, clog.ConnIDKey, ID)
	conn := &connection{
		clientConn: wsConn,
		id:         connectionID(ID),
		server:     s,
		responses:  make(chan *Response),
		context:    ctx,
	}
	go conn.writeResponsesToSocket()
	return conn
}

func (conn *connection) Ctx() context.Context {
	return conn.context
}

func (conn *connection) writeResponsesToSocket() {
	for resp := range conn.responses {
		writer, err := conn.clientConn.NextWriter(websocket.TextMessage)
		if err != nil {
			clog.Println(conn, "error writing to socket:", err)
			continue
		}

		bufWriter := bufio.NewWriter(writer)

		if err := json.NewEncoder(bufWriter).Encode(resp); err != nil {
			clog.Println(conn, "error writing response: encoding: ", err)
		}
		if err := bufWriter.Flush(); err != nil {
			clog.Println(conn, "error writing response: flushing buffer: ", err)
		}
		if err := writer.Close(); err != nil {
			clog.Println(conn, "error writing response: closing writer: ", err)
		}
	}
}

// handleRequests answers requests in the order they arrive until the
// socket closes.
func (conn *connection) handleRequests() {
	clog.Println(conn, "initiated from", conn.clientConn.RemoteAddr())
	defer close(conn.responses)
	for {
		_, message, readErr := conn.clientConn.ReadMessage()
		if readErr != nil {
			clog.Println(conn, "terminated:", readErr)
			conn.server.removeConn(conn)
			return
		}
		req := &Request{}
		if err := json.Unmarshal(message, req); err != nil {
			bad := &badRequest{Reason: err.Error()}
			conn.responses <- &Response{Error: bad.Error(), Kind: ErrorKind(bad)}
			continue
		}
		conn.responses <- conn.server.handle(newRequest(conn, req))
	}
}
