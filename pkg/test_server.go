package semnet

import (
	"net/http/httptest"
	"strings"

	"github.com/vilterp/semnet/pkg/scenario"
)

// TestServer is a server on a loopback port with a client connected to it.
type TestServer struct {
	Server *Server
	Client *Client
	HTTP   *httptest.Server
}

// NewTestServer serves the scenarios in dir.
func NewTestServer(dir string, config *Config) (*TestServer, error) {
	catalog, err := scenario.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	server := NewServer(catalog, config)
	httpServer := httptest.NewServer(server.Handler())

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	client, err := NewClient(url)
	if err != nil {
		httpServer.Close()
		return nil, err
	}

	return &TestServer{
		Server: server,
		Client: client,
		HTTP:   httpServer,
	}, nil
}

func (ts *TestServer) Close() {
	ts.Client.Close()
	<-ts.Client.ServerClosed
	ts.Server.closeConnections()
	ts.HTTP.Close()
}
