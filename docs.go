/*

Package sender provides a client for the Zabbix sender protocol, the TCP protocol trapper items
receive their values through. Data points are queued on a Sender and submitted in one request
per Send; the server's acknowledgment is kept until the next one arrives.

Each Send opens its own connection and closes it before returning. A Sender holds mutable
state and must not be shared between goroutines without external locking.

Metrics built for the Influx line protocol can be queued too, see AddMetric. A simple
implementation of protocol.Metric is provided so that no Influx specific code is needed.

Example

The following submits one value to a server on the default port 10051:

	s := sender.New("zabbix.example.com", sender.DefaultPort)
	err := s.AddDataPoint("host1", "cpu.load", "0.52").Send(context.Background())
	if err == nil && s.Response().Success() {
		info, _ := s.Response().Info()
		fmt.Println(info.Processed)
	}

*/
package sender
