package sender_test

import (
	"context"
	"fmt"
	"log"
	"net"

	sender "github.com/itzg/zabbix-sender"
)

type ExampleServer struct {
	listener net.Listener
}

func NewExampleServer() *ExampleServer {
	listener, err := net.Listen("tcp", "127.0.0.1:")
	if err != nil {
		log.Fatal(err)
	}
	e := &ExampleServer{listener: listener}
	go e.listen()
	return e
}

func (e *ExampleServer) Port() int {
	return e.listener.Addr().(*net.TCPAddr).Port
}

func (e *ExampleServer) listen() {
	conn, err := e.listener.Accept()
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	request, err := sender.ReadPacket(conn, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(request))

	err = sender.WritePacket(conn,
		[]byte(`{"response":"success","info":"processed: 1; failed: 0; total: 1; seconds spent: 0.000010"}`), false)
	if err != nil {
		log.Fatal(err)
	}
}

func Example_sending() {
	server := NewExampleServer()

	client := sender.New("127.0.0.1", server.Port())
	err := client.AddDataPointClock("host1", "cpu.load", "0.52", 1700000000).Send(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	info, _ := client.Response().Info()
	fmt.Println(client.Response().Status(), info.Processed)

	//Output:
	//{"request":"sender data","data":[{"host":"host1","key":"cpu.load","value":"0.52","clock":1700000000}]}
	//success 1
}
