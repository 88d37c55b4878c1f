// Command client is a manual CLI test client for the matching engine's
// TCP server, speaking the length-prefixed JSON frame protocol defined
// in internal/net.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	wire "matchcore/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matching engine server")
	owner := flag.String("owner", "", "user id (compulsory)")
	action := flag.String("action", "place", "action: place, cancel, get, list, book, trades, subscribe")

	symbol := flag.String("symbol", "BTC-USD", "symbol")
	sideStr := flag.String("side", "buy", "buy or sell")
	kindStr := flag.String("kind", "limit", "limit, market, or stop")
	price := flag.String("price", "", "limit price")
	stopPrice := flag.String("stop-price", "", "stop trigger price")
	qty := flag.String("qty", "1", "quantity")

	orderID := flag.Int64("order-id", 0, "order id for cancel/get")
	depth := flag.Int("depth", 20, "order book depth for book")
	limit := flag.Int("limit", 50, "trade count for trades")

	flag.Parse()

	if *owner == "" && *action != "book" && *action != "trades" && *action != "subscribe" {
		fmt.Println("Error: -owner is required for this action.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	switch strings.ToLower(*action) {
	case "place":
		req := wire.SubmitOrderRequest{
			UserID:   *owner,
			Symbol:   *symbol,
			Side:     strings.ToUpper(*sideStr),
			Kind:     strings.ToUpper(*kindStr),
			Quantity: *qty,
		}
		if *price != "" {
			req.Price = price
		}
		if *stopPrice != "" {
			req.StopPrice = stopPrice
		}
		send(conn, wire.TypeSubmitOrder, req)
		readOne(conn)

	case "cancel":
		send(conn, wire.TypeCancelOrder, wire.CancelOrderRequest{UserID: *owner, OrderID: *orderID})
		readOne(conn)

	case "get":
		send(conn, wire.TypeGetOrder, wire.GetOrderRequest{UserID: *owner, OrderID: *orderID})
		readOne(conn)

	case "list":
		send(conn, wire.TypeListOrders, wire.ListOrdersRequest{UserID: *owner})
		readOne(conn)

	case "book":
		send(conn, wire.TypeGetOrderBook, wire.GetOrderBookRequest{Symbol: *symbol, Depth: *depth})
		readOne(conn)

	case "trades":
		send(conn, wire.TypeGetRecentTrades, wire.GetRecentTradesRequest{Symbol: *symbol, Limit: *limit})
		readOne(conn)

	case "subscribe":
		send(conn, wire.TypeSubscribe, wire.SubscribeRequest{Symbol: *symbol})
		fmt.Println("subscribed, streaming events (Ctrl+C to exit)...")
		for {
			readOne(conn)
		}

	default:
		log.Fatalf("unknown action: %s", *action)
	}
}

func send(conn net.Conn, typeOf wire.MessageType, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("failed to encode request: %v", err)
	}
	header := make([]byte, wire.FrameHeaderLen)
	binary.BigEndian.PutUint16(header[0:2], uint16(typeOf))
	binary.BigEndian.PutUint32(header[2:6], uint32(len(payload)))
	if _, err := conn.Write(header); err != nil {
		log.Fatalf("failed to write frame header: %v", err)
	}
	if _, err := conn.Write(payload); err != nil {
		log.Fatalf("failed to write frame body: %v", err)
	}
}

func readOne(conn net.Conn) {
	header := make([]byte, wire.FrameHeaderLen)
	if _, err := io.ReadFull(conn, header); err != nil {
		log.Fatalf("connection lost: %v", err)
	}
	bodyLen := binary.BigEndian.Uint32(header[2:6])
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(conn, body); err != nil {
			log.Fatalf("connection lost reading body: %v", err)
		}
	}
	var report wire.Report
	if err := json.Unmarshal(body, &report); err != nil {
		log.Fatalf("failed to decode report: %v", err)
	}
	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(pretty))
}
