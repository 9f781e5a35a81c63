package main

import (
	"bufio"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type Message struct {
	Type string      `json:"type"`
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

const usage = `commands:
  register <user> <password>   login <user> <password>   logout
  catalog [category]           detail <course>           menu
  enroll <course>              remove <course>           clear
  quote                        pay <card> <MM/YY> <cvv>
  dish <name>                  cook <category> <dish>
course and dish names may contain spaces, e.g. "enroll First Aid"`

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "server address")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial error: %v", err)
	}
	defer c.Close()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	outgoing := make(chan Message)

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := c.WriteJSON(Message{Type: "heartbeat", Data: "ping"}); err != nil {
					log.Printf("heartbeat error: %v", err)
					return
				}
			case msg := <-outgoing:
				if err := c.WriteJSON(msg); err != nil {
					log.Printf("write error: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				return
			}
			for _, line := range strings.Split(string(message), "\n") {
				if !strings.Contains(line, `"heartbeat_response"`) {
					log.Printf("recv: %s", line)
				}
			}
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		log.Println(usage)
		for scanner.Scan() {
			msg, ok := parse(scanner.Text())
			if !ok {
				log.Println(usage)
				continue
			}
			select {
			case outgoing <- msg:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			log.Println("Connection closed")
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}

func parse(line string) (Message, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Message{}, false
	}
	rest := strings.Join(fields[1:], " ")

	switch fields[0] {
	case "register", "login":
		if len(fields) != 3 {
			return Message{}, false
		}
		data := map[string]string{"username": fields[1], "password": fields[2]}
		if fields[0] == "register" {
			data["passwordConfirm"] = fields[2]
		}
		return Message{Type: fields[0], Data: data}, true
	case "logout", "menu", "clear", "quote":
		return Message{Type: fields[0]}, true
	case "catalog":
		return Message{Type: "catalog", Data: map[string]string{"category": rest}}, true
	case "detail":
		return Message{Type: "course_detail", Data: map[string]string{"courseId": rest}}, rest != ""
	case "enroll", "remove":
		return Message{Type: fields[0], Data: map[string]string{"courseId": rest}}, rest != ""
	case "dish":
		return Message{Type: "dish_detail", Data: map[string]string{"dish": rest}}, rest != ""
	case "cook":
		if len(fields) < 3 {
			return Message{}, false
		}
		return Message{Type: "custom_dish", Data: map[string]string{
			"category": fields[1],
			"dish":     strings.Join(fields[2:], " "),
		}}, true
	case "pay":
		if len(fields) != 4 {
			return Message{}, false
		}
		return Message{Type: "checkout", Data: map[string]string{
			"cardNumber": fields[1],
			"expiryDate": fields[2],
			"cvv":        fields[3],
		}}, true
	}
	return Message{}, false
}
