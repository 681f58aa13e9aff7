// Package amqpsasl implements the SASL security layer of an AMQP 1.0
// transport: the authentication handshake that runs between a raw byte
// stream (often beneath TLS) and the AMQP frame layer proper.
//
// The implementation is sans-IO: it never opens sockets, never spawns
// goroutines and never blocks. Bytes go in and come out through a
// half-duplex buffer contract, and the caller decides when to pump.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  driver/     Buffer-pump convenience API                │
//	├─────────────────────────────────────────────────────────┤
//	│  sasl/       Negotiation state machine + mechanisms     │
//	├─────────────────────────────────────────────────────────┤
//	│  transport/  Byte-pipe contract, layer stack, sniffing  │
//	├─────────────────────────────────────────────────────────┤
//	│  amqp/       Wire codec for the SASL performatives      │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	client := driver.New(driver.Config{
//	    Username: "guest",
//	    Password: "guest",
//	})
//	server := driver.New(driver.Config{
//	    Server:      true,
//	    VerifyPlain: checkCredentials,
//	})
//	if err := driver.Pump(client, server); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(client.SASL().Outcome()) // OK
package amqpsasl
