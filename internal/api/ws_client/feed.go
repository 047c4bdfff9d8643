package main

import (
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"kaban_bot/internal/model"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Dev client for the live meeting feed. Pass signed init data from the mini app
// or run the server with MINIAPP_DEBUG=true.
func main() {
	addr := flag.String("addr", "ws://localhost:5005/api/v1/feed", "feed endpoint")
	initData := flag.String("init-data", os.Getenv("INIT_DATA"), "telegram init data")
	flag.Parse()

	u, err := url.Parse(*addr)
	if err != nil {
		log.Fatal("parse:", err)
	}
	q := u.Query()
	q.Set("init_data", *initData)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				return
			}

			var event model.MeetingEvent
			if err := json.Unmarshal(p, &event); err != nil {
				log.Printf("Received:\n%s\n", p)
				continue
			}

			pretty, _ := json.MarshalIndent(event, "", "  ")
			log.Printf("Received %s:\n%s\n", event.Type, pretty)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("close error:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
